package ledger

import (
	"math"
	"testing"

	"github.com/splitr-app/splitr/internal/models"
)

func expense(payer string, amount float64, splits ...models.Split) *models.Expense {
	return &models.Expense{
		Description:  "test",
		Amount:       amount,
		PaidByUserID: payer,
		SplitType:    "equal",
		Splits:       splits,
	}
}

func settlement(from, to string, amount float64) *models.Settlement {
	return &models.Settlement{
		Amount:           amount,
		PaidByUserID:     from,
		ReceivedByUserID: to,
	}
}

func TestNet(t *testing.T) {
	tests := []struct {
		name        string
		subject     string
		expenses    []*models.Expense
		settlements []*models.Settlement
		want        map[string]float64
	}{
		{
			name:    "subject pays three-way even split",
			subject: "alice",
			expenses: []*models.Expense{
				expense("alice", 90,
					models.Split{UserID: "alice", Amount: 30, Paid: true},
					models.Split{UserID: "bob", Amount: 30},
					models.Split{UserID: "carol", Amount: 30},
				),
			},
			want: map[string]float64{"bob": 30, "carol": 30},
		},
		{
			name:    "subject owes payer their split",
			subject: "alice",
			expenses: []*models.Expense{
				expense("bob", 100,
					models.Split{UserID: "bob", Amount: 50},
					models.Split{UserID: "alice", Amount: 50},
				),
			},
			want: map[string]float64{"bob": -50},
		},
		{
			name:    "paid splits contribute nothing",
			subject: "alice",
			expenses: []*models.Expense{
				expense("alice", 60,
					models.Split{UserID: "bob", Amount: 30, Paid: true},
					models.Split{UserID: "carol", Amount: 30},
				),
				expense("bob", 40,
					models.Split{UserID: "bob", Amount: 20},
					models.Split{UserID: "alice", Amount: 20, Paid: true},
				),
			},
			want: map[string]float64{"carol": 30},
		},
		{
			name:    "settlement cancels debt exactly",
			subject: "alice",
			expenses: []*models.Expense{
				expense("bob", 80,
					models.Split{UserID: "bob", Amount: 40},
					models.Split{UserID: "alice", Amount: 40},
				),
			},
			settlements: []*models.Settlement{settlement("alice", "bob", 40)},
			want:        map[string]float64{},
		},
		{
			name:    "received settlement reduces what is owed to subject",
			subject: "alice",
			expenses: []*models.Expense{
				expense("alice", 50,
					models.Split{UserID: "bob", Amount: 50},
				),
			},
			settlements: []*models.Settlement{settlement("bob", "alice", 20)},
			want:        map[string]float64{"bob": 30},
		},
		{
			name:    "over-payment flips the sign",
			subject: "alice",
			expenses: []*models.Expense{
				expense("bob", 40,
					models.Split{UserID: "bob", Amount: 20},
					models.Split{UserID: "alice", Amount: 20},
				),
			},
			settlements: []*models.Settlement{settlement("alice", "bob", 30)},
			want:        map[string]float64{"bob": 10},
		},
		{
			name:    "records not involving subject are ignored",
			subject: "alice",
			expenses: []*models.Expense{
				expense("bob", 30,
					models.Split{UserID: "bob", Amount: 15},
					models.Split{UserID: "carol", Amount: 15},
				),
			},
			settlements: []*models.Settlement{settlement("bob", "carol", 10)},
			want:        map[string]float64{},
		},
		{
			name:     "no records",
			subject:  "alice",
			expenses: nil,
			want:     map[string]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NetBalances(tt.subject, tt.expenses, tt.settlements)
			if len(got) != len(tt.want) {
				t.Fatalf("NetBalances() = %v, want %v", got, tt.want)
			}
			for id, want := range tt.want {
				if math.Abs(got[id]-want) > 1e-9 {
					t.Errorf("net with %s = %v, want %v", id, got[id], want)
				}
			}
		})
	}
}

func TestNet_NegativeBucketsPreserved(t *testing.T) {
	// A settlement with no matching expense drives the bucket negative.
	// The raw position must carry the negative value, not clamp at zero.
	positions := Net("alice", nil, []*models.Settlement{settlement("alice", "bob", 25)})

	p, ok := positions["bob"]
	if !ok {
		t.Fatal("expected a position for bob")
	}
	if p.OwedBySubject != -25 {
		t.Errorf("OwedBySubject = %v, want -25", p.OwedBySubject)
	}
	if p.Net() != 25 {
		t.Errorf("Net() = %v, want 25", p.Net())
	}
}

func TestNet_MarkingSplitPaidNeverIncreasesBalance(t *testing.T) {
	exp := expense("alice", 90,
		models.Split{UserID: "bob", Amount: 45},
		models.Split{UserID: "carol", Amount: 45},
	)

	before := NetBalances("alice", []*models.Expense{exp}, nil)

	exp.Splits[0].Paid = true
	after := NetBalances("alice", []*models.Expense{exp}, nil)

	if after["bob"] > before["bob"] {
		t.Errorf("bob's balance increased after marking paid: %v -> %v", before["bob"], after["bob"])
	}
	if after["carol"] != before["carol"] {
		t.Errorf("carol's balance changed: %v -> %v", before["carol"], after["carol"])
	}
}

func TestNet_Idempotent(t *testing.T) {
	expenses := []*models.Expense{
		expense("alice", 90,
			models.Split{UserID: "bob", Amount: 30},
			models.Split{UserID: "carol", Amount: 60},
		),
		expense("bob", 20,
			models.Split{UserID: "alice", Amount: 10},
			models.Split{UserID: "bob", Amount: 10},
		),
	}
	settlements := []*models.Settlement{settlement("alice", "bob", 5)}

	first := NetBalances("alice", expenses, settlements)
	second := NetBalances("alice", expenses, settlements)

	if len(first) != len(second) {
		t.Fatalf("runs disagree: %v vs %v", first, second)
	}
	for id, v := range first {
		if second[id] != v {
			t.Errorf("net with %s changed between runs: %v vs %v", id, v, second[id])
		}
	}
}

func TestGroupBalance(t *testing.T) {
	// Group of {alice, bob}: bob pays 100 split 50/50, alice unpaid.
	expenses := []*models.Expense{
		expense("bob", 100,
			models.Split{UserID: "bob", Amount: 50},
			models.Split{UserID: "alice", Amount: 50},
		),
	}

	if got := GroupBalance("alice", expenses, nil); got != -50 {
		t.Errorf("GroupBalance(alice) = %v, want -50", got)
	}
	if got := GroupBalance("bob", expenses, nil); got != 50 {
		t.Errorf("GroupBalance(bob) = %v, want 50", got)
	}

	// Alice settles up; both collapse to zero.
	settlements := []*models.Settlement{settlement("alice", "bob", 50)}
	if got := GroupBalance("alice", expenses, settlements); got != 0 {
		t.Errorf("GroupBalance(alice) after settlement = %v, want 0", got)
	}
}
