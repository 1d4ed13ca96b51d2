package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddoksuni/bokji/pkg/types"
)

// seedCatalog installs a small catalog spanning the region and tag cases
// the eligibility predicate must distinguish
func seedCatalog(t *testing.T, st *SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	for _, b := range []types.Benefit{
		{ID: "nationwide", Name: "전국 지원", Active: true},
		{ID: "seoul", Name: "서울시 지원", Province: "서울특별시", Active: true},
		{ID: "gangnam", Name: "강남구 지원", Province: "서울특별시", District: "강남구", Active: true},
		{ID: "busan", Name: "부산시 지원", Province: "부산광역시", Active: true},
		{ID: "youth", Name: "청년 지원", LifeStages: []string{"청년"}, Active: true},
		{ID: "senior-care", Name: "노년 돌봄", LifeStages: []string{"노년"}, TargetGroups: []string{"독거"}, Active: true},
		{ID: "pregnant", Name: "임산부 지원", TargetGroups: []string{"임산부"}, Active: true},
		{ID: "retired", Name: "종료된 지원", Active: false},
	} {
		benefit := b
		require.NoError(t, st.UpsertBenefit(ctx, &benefit))
	}
}

func eligibleIDs(t *testing.T, st *SQLiteStore, profile types.UserProfile) []string {
	t.Helper()
	results, err := st.ListEligible(context.Background(), profile)
	require.NoError(t, err)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func TestListEligible_Region(t *testing.T) {
	st := newTestStore(t)
	seedCatalog(t, st)

	t.Run("blank profile matches everything active", func(t *testing.T) {
		ids := eligibleIDs(t, st, types.UserProfile{})
		assert.ElementsMatch(t, []string{"nationwide", "seoul", "gangnam", "busan", "youth", "senior-care", "pregnant"}, ids)
	})

	t.Run("district profile matches district, province and nationwide", func(t *testing.T) {
		ids := eligibleIDs(t, st, types.UserProfile{Province: "서울특별시", District: "강남구"})
		assert.Contains(t, ids, "gangnam")
		assert.Contains(t, ids, "seoul")
		assert.Contains(t, ids, "nationwide")
		assert.NotContains(t, ids, "busan")
	})

	t.Run("other district excludes district-scoped record", func(t *testing.T) {
		ids := eligibleIDs(t, st, types.UserProfile{Province: "서울특별시", District: "은평구"})
		assert.NotContains(t, ids, "gangnam")
		assert.Contains(t, ids, "seoul")
	})

	t.Run("province without district matches district-scoped record", func(t *testing.T) {
		// A blank profile district is unconstrained, not "no district"
		ids := eligibleIDs(t, st, types.UserProfile{Province: "서울특별시"})
		assert.Contains(t, ids, "gangnam")
		assert.Contains(t, ids, "seoul")
	})

	t.Run("soft-deleted records never match", func(t *testing.T) {
		ids := eligibleIDs(t, st, types.UserProfile{})
		assert.NotContains(t, ids, "retired")
	})
}

func TestListEligible_Tags(t *testing.T) {
	st := newTestStore(t)
	seedCatalog(t, st)

	t.Run("life stage filters tagged records", func(t *testing.T) {
		ids := eligibleIDs(t, st, types.UserProfile{LifeStages: []string{"청년"}})
		assert.Contains(t, ids, "youth")
		assert.NotContains(t, ids, "senior-care")
		// Untagged records apply to every life stage
		assert.Contains(t, ids, "nationwide")
		assert.Contains(t, ids, "pregnant")
	})

	t.Run("target group filters tagged records", func(t *testing.T) {
		ids := eligibleIDs(t, st, types.UserProfile{TargetGroups: []string{"임산부"}})
		assert.Contains(t, ids, "pregnant")
		assert.NotContains(t, ids, "senior-care")
		assert.Contains(t, ids, "nationwide")
	})

	t.Run("any overlapping tag is enough", func(t *testing.T) {
		ids := eligibleIDs(t, st, types.UserProfile{LifeStages: []string{"노년", "중장년"}, TargetGroups: []string{"독거"}})
		assert.Contains(t, ids, "senior-care")
	})

	t.Run("tag matching is exact, not substring", func(t *testing.T) {
		ctx := context.Background()
		multi := types.Benefit{ID: "multi", Name: "다중 태그", LifeStages: []string{"영유아", "아동"}, Active: true}
		require.NoError(t, st.UpsertBenefit(ctx, &multi))

		// "유아" alone must not match the stored "영유아" tag
		ids := eligibleIDs(t, st, types.UserProfile{LifeStages: []string{"유아"}})
		assert.NotContains(t, ids, "multi")

		ids = eligibleIDs(t, st, types.UserProfile{LifeStages: []string{"아동"}})
		assert.Contains(t, ids, "multi")
	})
}

func TestEligibilityClause(t *testing.T) {
	t.Run("blank profile is active-only", func(t *testing.T) {
		clause, args := eligibilityClause(types.UserProfile{}, true)
		assert.Equal(t, "b.is_active = 1", clause)
		assert.Empty(t, args)
	})

	t.Run("tags excluded when prefilter disabled", func(t *testing.T) {
		profile := types.UserProfile{LifeStages: []string{"청년"}}

		clause, args := eligibilityClause(profile, false)
		assert.NotContains(t, clause, "life_stages")
		assert.Empty(t, args)

		clause, args = eligibilityClause(profile, true)
		assert.Contains(t, clause, "life_stages")
		assert.Equal(t, []interface{}{"%,청년,%"}, args)
	})
}
