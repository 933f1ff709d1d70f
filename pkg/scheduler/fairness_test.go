package scheduler

import "testing"

func TestPriorityZeroWaitZeroUsageIsBase(t *testing.T) {
	s := DefaultFairnessSettings()
	got := s.Priority(0, 0)
	if got != s.BasePriority {
		t.Fatalf("expected exactly base priority %v, got %v", s.BasePriority, got)
	}
}

func TestPriorityMonotonicInWait(t *testing.T) {
	s := DefaultFairnessSettings()
	a := s.Priority(1, 500)
	b := s.Priority(2, 500)
	if !(b > a) {
		t.Fatalf("expected priority to strictly increase with wait: a=%v b=%v", a, b)
	}
}

func TestPriorityMonotonicInUsage(t *testing.T) {
	s := DefaultFairnessSettings()
	a := s.Priority(10, 100)
	b := s.Priority(10, 200)
	if !(b < a) {
		t.Fatalf("expected priority to strictly decrease with usage: a=%v b=%v", a, b)
	}
}
