package main

import (
	"fmt"

	"github.com/sanity-io/litter"

	"github.com/kevinxiao27/vlist/ol"
	"github.com/kevinxiao27/vlist/ot"
	"github.com/kevinxiao27/vlist/vlist"
)

func main() {
	litter.Config.HidePrivateFields = false
	list := vlist.New(vlist.WithItems([]string{"milk", "eggs", "bread"}))
	base := list.Version()

	// Three replicas edit version 0 without seeing each other's changes.
	edits := []struct {
		replica string
		op      ot.Op[string]
	}{
		{"alice", ot.Must(ot.NewMove[string](2, 0))},
		{"bob", ot.Must(ot.NewRemove[string](2))},
		{"carol", ot.Must(ot.NewModify(2, "rye bread"))},
	}

	for _, e := range edits {
		committed, outcome := list.ProcessOperation(e.op, base)
		applied := "nothing"
		if committed != nil {
			applied = committed.String()
		}
		fmt.Printf("%-5s submitted %-16s at v%d → %s, committed %s\n", e.replica, e.op, base, outcome, applied)
	}

	// A fourth replica still holding an edit against version 0 rebases it
	// locally before resubmitting.
	pending := ot.Must(ot.NewInsert(1, "butter"))
	missed, outcome := list.Since(base)
	if outcome != vlist.Successful {
		fmt.Println("resync required:", outcome)
		return
	}
	rebased, live := pending.TransformAll(ol.Ops(missed))
	fmt.Printf("dave  rebased %s → %s (live=%v)\n", pending, rebased, live)
	if _, outcome := list.ProcessOperation(rebased, list.Version()); outcome != vlist.Successful {
		fmt.Println("dave's edit was not applied:", outcome)
	}

	litter.Dump(list.Snapshot())
}
