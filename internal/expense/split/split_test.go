package split

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

var (
	memberA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	memberB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	memberC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
)

func pctPtr(v float64) *float64 { return &v }
func amtPtr(v int64) *int64     { return &v }

func sumOutputs(outputs []Output) int64 {
	var total int64
	for _, o := range outputs {
		total += o.Amount
	}
	return total
}

func TestEqualStrategy(t *testing.T) {
	strategy := &EqualStrategy{}

	tests := []struct {
		name         string
		amount       int64
		participants []Input
		wantErr      error
		want         []int64
	}{
		{
			name:         "exact division",
			amount:       9000,
			participants: []Input{{MemberID: memberA}, {MemberID: memberB}, {MemberID: memberC}},
			want:         []int64{3000, 3000, 3000},
		},
		{
			name:   "remainder goes to first participants in order",
			amount: 10000, // $100.00 three ways
			participants: []Input{
				{MemberID: memberA}, {MemberID: memberB}, {MemberID: memberC},
			},
			want: []int64{3334, 3333, 3333},
		},
		{
			name:         "two leftover units land on first two",
			amount:       11,
			participants: []Input{{MemberID: memberA}, {MemberID: memberB}, {MemberID: memberC}},
			want:         []int64{4, 4, 3},
		},
		{
			name:         "single participant gets everything",
			amount:       777,
			participants: []Input{{MemberID: memberA}},
			want:         []int64{777},
		},
		{
			name:         "no participants",
			amount:       100,
			participants: nil,
			wantErr:      ErrNoParticipants,
		},
		{
			name:         "non-positive amount",
			amount:       0,
			participants: []Input{{MemberID: memberA}},
			wantErr:      ErrInvalidAmount,
		},
		{
			name:         "duplicate participant",
			amount:       100,
			participants: []Input{{MemberID: memberA}, {MemberID: memberA}},
			wantErr:      ErrDuplicateParticipant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs, err := strategy.Calculate(tt.amount, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Calculate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}
			for i, want := range tt.want {
				if outputs[i].Amount != want {
					t.Errorf("output[%d] = %d, want %d", i, outputs[i].Amount, want)
				}
			}
			if got := sumOutputs(outputs); got != tt.amount {
				t.Errorf("outputs sum to %d, want %d", got, tt.amount)
			}
		})
	}
}

func TestEqualStrategyDeterministic(t *testing.T) {
	strategy := &EqualStrategy{}
	participants := []Input{{MemberID: memberC}, {MemberID: memberA}, {MemberID: memberB}}

	first, err := strategy.Calculate(1000, participants)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := strategy.Calculate(1000, participants)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
}

func TestPercentageStrategy(t *testing.T) {
	strategy := &PercentageStrategy{}

	tests := []struct {
		name         string
		amount       int64
		participants []Input
		wantErr      error
		want         []int64
	}{
		{
			name:   "clean percentages",
			amount: 10000,
			participants: []Input{
				{MemberID: memberA, Percentage: pctPtr(50)},
				{MemberID: memberB, Percentage: pctPtr(30)},
				{MemberID: memberC, Percentage: pctPtr(20)},
			},
			want: []int64{5000, 3000, 2000},
		},
		{
			name:   "thirds land exactly",
			amount: 10000,
			participants: []Input{
				{MemberID: memberA, Percentage: pctPtr(33.33)},
				{MemberID: memberB, Percentage: pctPtr(33.33)},
				{MemberID: memberC, Percentage: pctPtr(33.34)},
			},
			want: []int64{3333, 3333, 3334},
		},
		{
			name:   "leftover unit goes to the first participant",
			amount: 100, // floors are 33, 33, 33
			participants: []Input{
				{MemberID: memberA, Percentage: pctPtr(33.33)},
				{MemberID: memberB, Percentage: pctPtr(33.33)},
				{MemberID: memberC, Percentage: pctPtr(33.34)},
			},
			want: []int64{34, 33, 33},
		},
		{
			name:   "leftover unit skips a zero-percentage participant",
			amount: 101, // floors are 0, 50, 50
			participants: []Input{
				{MemberID: memberA, Percentage: pctPtr(0)},
				{MemberID: memberB, Percentage: pctPtr(50)},
				{MemberID: memberC, Percentage: pctPtr(50)},
			},
			want: []int64{0, 51, 50},
		},
		{
			name:   "percentages off by more than tolerance",
			amount: 10000,
			participants: []Input{
				{MemberID: memberA, Percentage: pctPtr(50)},
				{MemberID: memberB, Percentage: pctPtr(49)},
			},
			wantErr: ErrInvalidPercentages,
		},
		{
			name:   "missing percentage",
			amount: 10000,
			participants: []Input{
				{MemberID: memberA, Percentage: pctPtr(50)},
				{MemberID: memberB},
			},
			wantErr: ErrMissingPercentage,
		},
		{
			name:   "percentage out of range",
			amount: 10000,
			participants: []Input{
				{MemberID: memberA, Percentage: pctPtr(101)},
				{MemberID: memberB, Percentage: pctPtr(-1)},
			},
			wantErr: ErrPercentageOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs, err := strategy.Calculate(tt.amount, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Calculate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}
			for i, want := range tt.want {
				if outputs[i].Amount != want {
					t.Errorf("output[%d] = %d, want %d", i, outputs[i].Amount, want)
				}
			}
			if got := sumOutputs(outputs); got != tt.amount {
				t.Errorf("outputs sum to %d, want %d", got, tt.amount)
			}
		})
	}
}

func TestExactStrategy(t *testing.T) {
	strategy := &ExactStrategy{}

	tests := []struct {
		name         string
		amount       int64
		participants []Input
		wantErr      error
		want         []int64
	}{
		{
			name:   "amounts sum exactly",
			amount: 10000,
			participants: []Input{
				{MemberID: memberA, Amount: amtPtr(7500)},
				{MemberID: memberB, Amount: amtPtr(2500)},
			},
			want: []int64{7500, 2500},
		},
		{
			name:   "one minor unit short is repaired on the last participant",
			amount: 10000,
			participants: []Input{
				{MemberID: memberA, Amount: amtPtr(3333)},
				{MemberID: memberB, Amount: amtPtr(3333)},
				{MemberID: memberC, Amount: amtPtr(3333)},
			},
			want: []int64{3333, 3333, 3334},
		},
		{
			name:   "off by more than one minor unit",
			amount: 10000,
			participants: []Input{
				{MemberID: memberA, Amount: amtPtr(5000)},
				{MemberID: memberB, Amount: amtPtr(4000)},
			},
			wantErr: ErrInvalidExactAmounts,
		},
		{
			name:   "missing amount",
			amount: 10000,
			participants: []Input{
				{MemberID: memberA, Amount: amtPtr(10000)},
				{MemberID: memberB},
			},
			wantErr: ErrMissingExactAmount,
		},
		{
			name:   "negative amount",
			amount: 100,
			participants: []Input{
				{MemberID: memberA, Amount: amtPtr(200)},
				{MemberID: memberB, Amount: amtPtr(-100)},
			},
			wantErr: ErrNegativeAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs, err := strategy.Calculate(tt.amount, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Calculate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}
			for i, want := range tt.want {
				if outputs[i].Amount != want {
					t.Errorf("output[%d] = %d, want %d", i, outputs[i].Amount, want)
				}
			}
			if got := sumOutputs(outputs); got != tt.amount {
				t.Errorf("outputs sum to %d, want %d", got, tt.amount)
			}
		})
	}
}

func TestFactory(t *testing.T) {
	factory := NewFactory()

	for _, splitType := range []SplitType{SplitTypeEqual, SplitTypePercentage, SplitTypeExact} {
		strategy, err := factory.Create(splitType)
		if err != nil {
			t.Fatalf("Create(%s) error = %v", splitType, err)
		}
		if strategy.Type() != splitType {
			t.Errorf("Create(%s).Type() = %s", splitType, strategy.Type())
		}
	}

	if _, err := factory.CreateFromString("HALVSIES"); err == nil {
		t.Error("CreateFromString with unknown type should error")
	}
}
