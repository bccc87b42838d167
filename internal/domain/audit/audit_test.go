package audit

import (
	"strings"
	"testing"
)

func TestBuildQueryAddsFiltersInOrder(t *testing.T) {
	query, args := BuildQuery(Filter{Action: "swap.approve", EntityID: "o1"}, 20, 40)
	if !strings.Contains(query, "action = $1") || !strings.Contains(query, "entity_id = $2") {
		t.Fatalf("unexpected query: %s", query)
	}
	if !strings.HasSuffix(query, "LIMIT $3 OFFSET $4") {
		t.Fatalf("unexpected paging clause: %s", query)
	}
	if len(args) != 4 || args[2] != 20 || args[3] != 40 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildQueryWithoutFilters(t *testing.T) {
	query, args := BuildQuery(Filter{}, 10, 0)
	if strings.Contains(query, "action =") {
		t.Fatalf("did not expect action filter: %s", query)
	}
	if len(args) != 2 {
		t.Fatalf("expected only paging args, got %v", args)
	}
}
