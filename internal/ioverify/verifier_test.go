package ioverify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviatlas/avidb/internal/iodb"
	"github.com/aviatlas/avidb/pkg/avidb"
	"github.com/aviatlas/avidb/pkg/config"
	"github.com/aviatlas/avidb/pkg/errcode"
	"github.com/aviatlas/avidb/pkg/taxonomy"
	"github.com/gnames/gn"
)

// fakeChecks serves fixed counts per check.
type fakeChecks struct {
	counts map[taxonomy.Rank]int
	root   int
	stray  int
	skew   int
	dups   int

	countsErr error
	rootErr   error
}

func (f *fakeChecks) RankCounts(
	_ context.Context,
) (map[taxonomy.Rank]int, error) {
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	return f.counts, nil
}

func (f *fakeChecks) RootCount(_ context.Context) (int, error) {
	if f.rootErr != nil {
		return 0, f.rootErr
	}
	return f.root, nil
}

func (f *fakeChecks) StrayCount(_ context.Context) (int, error) {
	return f.stray, nil
}

func (f *fakeChecks) RankSkewCount(_ context.Context) (int, error) {
	return f.skew, nil
}

func (f *fakeChecks) DuplicateCodeCount(_ context.Context) (int, error) {
	return f.dups, nil
}

func testVerifier(store integrityStore) *verifier {
	return &verifier{cfg: config.New(), store: store}
}

func healthyCounts() map[taxonomy.Rank]int {
	return map[taxonomy.Rank]int{
		taxonomy.RankClass:   1,
		taxonomy.RankOrder:   41,
		taxonomy.RankFamily:  252,
		taxonomy.RankGenus:   2380,
		taxonomy.RankSpecies: 11145,
	}
}

func TestNewVerifier_ImplementsInterface(t *testing.T) {
	var vrf avidb.Verifier = NewVerifier(
		config.New(), iodb.NewPgxOperator())
	assert.NotNil(t, vrf)
}

func TestVerify_AllPass(t *testing.T) {
	vrf := testVerifier(&fakeChecks{
		counts: healthyCounts(),
		root:   1,
	})

	rep, err := vrf.Verify(context.Background())
	require.NoError(t, err)

	assert.True(t, rep.Passed())
	assert.Equal(t, healthyCounts(), rep.Counts)

	require.Len(t, rep.Checks, 4)
	names := make([]string, len(rep.Checks))
	for i, c := range rep.Checks {
		names[i] = c.Name
		assert.True(t, c.Passed, c.Name)
		assert.Empty(t, c.Detail, c.Name)
	}
	assert.Equal(t, []string{
		"single class root",
		"no orphaned nodes",
		"parent rank one level above",
		"no duplicate eBird codes",
	}, names)
}

func TestVerify_DetectsProblems(t *testing.T) {
	vrf := testVerifier(&fakeChecks{
		counts: healthyCounts(),
		root:   2,
		stray:  1234,
		skew:   3,
		dups:   2,
	})

	rep, err := vrf.Verify(context.Background())
	require.NoError(t, err, "Failing checks are a report, not an error")

	assert.False(t, rep.Passed())
	require.Len(t, rep.Checks, 4)

	assert.Equal(t, "expected one class row, found 2",
		rep.Checks[0].Detail)
	assert.Equal(t, "1,234 nodes reference a missing or NULL parent",
		rep.Checks[1].Detail)
	assert.Equal(t, "3 nodes are linked to the wrong parent rank",
		rep.Checks[2].Detail)
	assert.Equal(t, "2 codes appear on more than one row",
		rep.Checks[3].Detail)
}

func TestVerify_EmptyTree(t *testing.T) {
	vrf := testVerifier(&fakeChecks{})

	rep, err := vrf.Verify(context.Background())
	require.NoError(t, err)

	// Only the root check can fail on an empty table.
	assert.False(t, rep.Passed())
	assert.False(t, rep.Checks[0].Passed)
	assert.True(t, rep.Checks[1].Passed)
	assert.True(t, rep.Checks[2].Passed)
	assert.True(t, rep.Checks[3].Passed)
}

func TestVerify_QueryFailure(t *testing.T) {
	vrf := testVerifier(&fakeChecks{
		counts:  healthyCounts(),
		rootErr: QueryError("single class root", errors.New("timeout")),
	})

	_, err := vrf.Verify(context.Background())
	require.Error(t, err)

	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "Should return a structured error")
	assert.Equal(t, errcode.VerifyQueryError, gnErr.Code)
}
