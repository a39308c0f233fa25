package svc

import "testing"

type recordingListener struct {
	adds []int
}

func (r *recordingListener) ProcessAdd(v int)    { r.adds = append(r.adds, v) }
func (r *recordingListener) ProcessRemove(int)   {}
func (r *recordingListener) ProcessUpdate(int)   {}

type panickingListener struct{}

func (panickingListener) ProcessAdd(int)    { panic("boom") }
func (panickingListener) ProcessRemove(int) {}
func (panickingListener) ProcessUpdate(int) {}

func TestOnMessageUpsertsAndFansOutInOrder(t *testing.T) {
	s := New[string, int]("test")
	var a, b recordingListener
	s.AddListener(&a)
	s.AddListener(&b)

	s.OnMessage("k", 1)
	s.OnMessage("k", 2)

	if v, ok := s.GetData("k"); !ok || v != 2 {
		t.Fatalf("GetData(k) = %v, %v; want 2, true", v, ok)
	}
	if got := a.adds; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("listener a adds = %v; want [1 2]", got)
	}
	if got := b.adds; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("listener b adds = %v; want [1 2]", got)
	}
}

func TestPanickingListenerDoesNotBlockSubsequentListeners(t *testing.T) {
	s := New[string, int]("test")
	s.AddListener(panickingListener{})
	var after recordingListener
	s.AddListener(&after)

	s.OnMessage("k", 7)

	if len(after.adds) != 1 || after.adds[0] != 7 {
		t.Fatalf("listener after panicking one: adds = %v; want [7]", after.adds)
	}
}

func TestGetDataMissingKey(t *testing.T) {
	s := New[string, int]("test")
	if _, ok := s.GetData("missing"); ok {
		t.Fatal("GetData(missing) ok = true; want false")
	}
}
