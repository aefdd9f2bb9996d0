package split

import (
	"errors"
	"testing"
)

func TestItemizedStrategy(t *testing.T) {
	members := roster("Alice", "Bob", "Charlie")
	alice, bob, charlie := members[0], members[1], members[2]

	tests := []struct {
		name    string
		items   []Item
		input   Input
		wantErr error
		want    map[int64]float64
	}{
		{
			name: "fully assigned items",
			items: []Item{
				{Name: "Pizza", Price: 25.00, Assignees: []Member{alice, bob}},
				{Name: "Salad", Price: 15.00, Assignees: []Member{charlie}},
			},
			want: map[int64]float64{alice.UserID: 12.50, bob.UserID: 12.50, charlie.UserID: 15.00},
		},
		{
			name: "item remainder goes to first assignee",
			items: []Item{
				{Name: "Wine", Price: 10.00, Assignees: []Member{alice, bob, charlie}},
			},
			want: map[int64]float64{alice.UserID: 3.34, bob.UserID: 3.33, charlie.UserID: 3.33},
		},
		{
			name: "unassigned items pool to whole roster",
			items: []Item{
				{Name: "Steak", Price: 30.00, Assignees: []Member{alice}},
				{Name: "Tip", Price: 10.00},
			},
			want: map[int64]float64{alice.UserID: 33.34, bob.UserID: 3.33, charlie.UserID: 3.33},
		},
		{
			name: "all items unassigned falls back to equal",
			items: []Item{
				{Name: "Groceries", Price: 100.00},
			},
			want: map[int64]float64{alice.UserID: 33.34, bob.UserID: 33.33, charlie.UserID: 33.33},
		},
		{
			name:    "no items",
			items:   nil,
			wantErr: ErrNoItems,
		},
		{
			name: "negative price",
			items: []Item{
				{Name: "Refund", Price: -5.00, Assignees: []Member{alice}},
			},
			wantErr: ErrNegativeAmount,
		},
	}

	strategy := &ItemizedStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{Roster: members, Items: tt.items, DefaultSplit: DefaultSplitEqual}
			result, err := strategy.Calculate(0, in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}

			var itemTotal float64
			for _, item := range tt.items {
				itemTotal += item.Price
			}
			assertSumsTo(t, result, itemTotal)

			got := make(map[int64]float64)
			for _, s := range result {
				got[s.UserID] = s.Amount
			}
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("share for user %d = %v, want %v", id, got[id], want)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("got %d shares, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestItemizedUnsupportedDefaultSplit(t *testing.T) {
	in := Input{
		Roster:       roster("Alice", "Bob"),
		Items:        []Item{{Name: "Tip", Price: 10.00}},
		DefaultSplit: "proportional",
	}
	_, err := (&ItemizedStrategy{}).Calculate(0, in)
	if !errors.Is(err, ErrUnsupportedDefaultSplit) {
		t.Errorf("error = %v, want ErrUnsupportedDefaultSplit", err)
	}
}

func TestItemizedEmptyRoster(t *testing.T) {
	in := Input{Items: []Item{{Name: "Pizza", Price: 20.00}}}
	_, err := (&ItemizedStrategy{}).Calculate(0, in)
	if !errors.Is(err, ErrNoMembers) {
		t.Errorf("error = %v, want ErrNoMembers", err)
	}
}

func TestItemizedSkipsNonParticipants(t *testing.T) {
	members := roster("Alice", "Bob", "Charlie")
	in := Input{
		Roster: members,
		Items: []Item{
			{Name: "Cake", Price: 12.00, Assignees: []Member{members[0], members[1]}},
		},
	}
	result, err := (&ItemizedStrategy{}).Calculate(0, in)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("got %d shares, want 2 (Charlie consumed nothing)", len(result))
	}
	assertSumsTo(t, result, 12.00)
}
