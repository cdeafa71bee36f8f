package vlist

import (
	"fmt"
	"math/rand/v2"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sanity-io/litter"
	"github.com/stretchr/testify/require"

	"github.com/kevinxiao27/vlist/ol"
	"github.com/kevinxiao27/vlist/ot"
)

const fuzzIterations = 50_000

var dump = litter.Options{Separator: " ", StripPackageNames: true}

// randomOp builds an operation that is in bounds for a list of count items.
func randomOp(r *rand.Rand, count, seq int) ot.Op[string] {
	value := fmt.Sprintf("v%d", seq)
	if count == 0 {
		if r.IntN(20) == 0 {
			return ot.NewClear[string]()
		}
		return ot.Must(ot.NewInsert(0, value))
	}

	switch n := r.IntN(100); {
	case n < 40:
		return ot.Must(ot.NewInsert(r.IntN(count+1), value))
	case n < 60:
		return ot.Must(ot.NewRemove[string](r.IntN(count)))
	case n < 75:
		return ot.Must(ot.NewModify(r.IntN(count), value))
	case n < 97:
		return ot.Must(ot.NewMove[string](r.IntN(count), r.IntN(count)))
	default:
		return ot.NewClear[string]()
	}
}

// lazy defers building a failure message until testify formats it.
type lazy func() string

func (f lazy) String() string { return f() }

func replay(t *testing.T, entries []ol.Entry[string]) []string {
	t.Helper()
	items := []string{}
	for _, e := range entries {
		var err error
		items, err = e.Op.Apply(items)
		require.NoError(t, err, "replaying %s at v%d", e.Op, e.Version)
	}
	return items
}

func TestFuzzProcessOperation(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	l := New[string]()

	outcomes := mapset.NewSet(Successful, DiscardOperation, BadOperation, InvalidVersion, OutOfOperationalRange)
	rejected := mapset.NewSet(BadOperation, InvalidVersion, OutOfOperationalRange)
	seen := mapset.NewSet[Outcome]()

	// Length of the list at each version, so ops can be generated against
	// the state their submitter would have seen.
	counts := map[int]int{0: 0}

	for i := 0; i < fuzzIterations; i++ {
		before := l.Snapshot()

		var base int
		switch n := r.IntN(100); {
		case n < 2:
			base = before.Version() + 1 + r.IntN(3)
		case n < 4 && before.MinValidVersion() > 0:
			base = r.IntN(before.MinValidVersion())
		default:
			// Mostly recent, occasionally far behind.
			lag := min(r.IntN(4)+r.IntN(2)*r.IntN(20), before.Version()-before.MinValidVersion())
			base = before.Version() - lag
		}

		op := randomOp(r, counts[min(base, before.Version())], i)
		got, outcome := l.ProcessOperation(op, base)
		after := l.Snapshot()
		seen.Add(outcome)

		state := lazy(func() string {
			entries, _ := l.Since(after.MinValidVersion())
			return dump.Sdump(i, op, base, outcome, before.Items(), after.Items(), entries)
		})

		require.True(t, outcomes.Contains(outcome), state)
		require.Equal(t, rejected.Contains(outcome), got == nil, state)
		require.LessOrEqual(t, after.MinValidVersion(), after.Version(), state)

		switch {
		case outcome.Committed():
			require.Equal(t, before.Version()+1, after.Version(), state)
			counts[after.Version()] = after.Len()
		default:
			require.Equal(t, before.Version(), after.Version(), state)
			require.Equal(t, before.Items(), after.Items(), state)
		}
		if outcome == DiscardOperation {
			require.True(t, got.IsNoop(), state)
			require.Equal(t, before.Items(), after.Items(), state)
		}
		if base < before.MinValidVersion() {
			require.Equal(t, OutOfOperationalRange, outcome, state)
		}
		if base > before.Version() {
			require.Equal(t, InvalidVersion, outcome, state)
		}

		// A replica that saw only the retained history converges on the
		// authority's items.
		if i%500 == 0 {
			entries, o := l.Since(after.MinValidVersion())
			require.Equal(t, Successful, o)
			require.Equal(t, after.Items(), replay(t, entries), state)
		}
	}

	require.True(t, seen.Contains(Successful))
	require.True(t, seen.Contains(DiscardOperation))
	require.True(t, seen.Contains(InvalidVersion))
	require.True(t, seen.Contains(OutOfOperationalRange))
}
