package vm

import "testing"

func TestFlagsForExactlyOneSet(t *testing.T) {
	cases := []struct {
		v    int64
		want FlagState
	}{
		{0, FlagZero},
		{1, FlagPositive},
		{-1, FlagNegative},
		{-9999, FlagNegative},
		{9999, FlagPositive},
	}
	for _, c := range cases {
		got := flagsFor(c.v)
		if got != c.want {
			t.Errorf("flagsFor(%d) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestTakeBranchPredicates(t *testing.T) {
	cases := []struct {
		kind jumpKind
		flag FlagState
		want bool
	}{
		{jumpEQ, FlagZero, true},
		{jumpEQ, FlagPositive, false},
		{jumpNE, FlagZero, false},
		{jumpNE, FlagNegative, true},
		{jumpLE, FlagZero, true},
		{jumpLE, FlagNegative, true},
		{jumpLE, FlagPositive, false},
		{jumpLT, FlagNegative, true},
		{jumpLT, FlagZero, false},
		{jumpGE, FlagZero, true},
		{jumpGE, FlagPositive, true},
		{jumpGE, FlagNegative, false},
		{jumpGT, FlagPositive, true},
		{jumpGT, FlagZero, false},
	}
	for _, c := range cases {
		if got := takeBranch(c.kind, c.flag); got != c.want {
			t.Errorf("takeBranch(%v, %v) = %v, want %v", c.kind, c.flag, got, c.want)
		}
	}
}
