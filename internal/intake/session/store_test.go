package session

import (
	"sync"
	"testing"
	"time"

	"resale_support_backend/internal/intake/domain"
)

func newTestStore(timeout time.Duration) (*Store, *time.Time) {
	st := NewStore(timeout)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return current }
	return st, &current
}

func populated(s *Session) {
	s.State = StateConfirming
	s.ImagePaths = []string{"/tmp/a.jpg", "/tmp/b.jpg"}
	s.TextInput = "880 222"
	s.PurchasePrice = domain.IntPtr(880)
	s.ManagementID = "222"
	s.Measurements = &domain.Measurements{
		Length: domain.IntPtr(60), Width: domain.IntPtr(50),
		Shoulder: domain.IntPtr(42), Sleeve: domain.IntPtr(20),
	}
	s.Features = domain.NewFeatures()
	s.Product = &domain.Product{ManagementID: "222"}
}

func TestGetCreatesOnFirstAccess(t *testing.T) {
	st, _ := newTestStore(30 * time.Minute)

	s := st.Get("U1")
	if s == nil || s.UserID != "U1" {
		t.Fatalf("Get returned %+v", s)
	}
	if s.State != StateIdle {
		t.Errorf("new session state = %q, want idle", s.State)
	}
	if st.Get("U1") != s {
		t.Error("second Get returned a different session")
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d, want 1", st.Len())
	}
}

func TestResetClearsEverything(t *testing.T) {
	st, _ := newTestStore(30 * time.Minute)
	s := st.Get("U1")
	populated(s)

	s.Reset(time.Now())

	if s.State != StateIdle {
		t.Errorf("state = %q, want idle", s.State)
	}
	if len(s.ImagePaths) != 0 {
		t.Errorf("imagePaths = %v, want empty", s.ImagePaths)
	}
	if s.PurchasePrice != nil || s.ManagementID != "" || s.Measurements != nil ||
		s.Features != nil || s.Product != nil || s.TextInput != "" {
		t.Errorf("collected fields not cleared: %+v", s)
	}
	if s.HasRequiredData() {
		t.Error("HasRequiredData must be false after reset")
	}
	if s.UserID != "U1" {
		t.Error("identity must survive reset")
	}
}

func TestExpiredSessionIsResetInPlace(t *testing.T) {
	st, current := newTestStore(30 * time.Minute)
	s := st.Get("U1")
	populated(s)
	st.Update(s)

	*current = current.Add(31 * time.Minute)

	again := st.Get("U1")
	if again != s {
		t.Fatal("expired session must be reset in place, not replaced")
	}
	if again.State != StateIdle || again.PurchasePrice != nil {
		t.Errorf("expired session not cleared: %+v", again)
	}
}

func TestUpdateKeepsSessionAlive(t *testing.T) {
	st, current := newTestStore(30 * time.Minute)
	s := st.Get("U1")
	populated(s)
	st.Update(s)

	// Stay just under the timeout with periodic activity.
	for i := 0; i < 3; i++ {
		*current = current.Add(29 * time.Minute)
		got := st.Get("U1")
		if got.State != StateConfirming {
			t.Fatalf("session expired despite activity at step %d", i)
		}
		st.Update(got)
	}
}

func TestCleanupExpired(t *testing.T) {
	st, current := newTestStore(30 * time.Minute)
	st.Update(st.Get("U1"))
	st.Update(st.Get("U2"))

	*current = current.Add(20 * time.Minute)
	st.Update(st.Get("U2")) // U2 stays fresh

	*current = current.Add(15 * time.Minute) // U1 is now 35min idle, U2 15min

	if removed := st.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired removed %d, want 1", removed)
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d, want 1", st.Len())
	}
}

func TestDelete(t *testing.T) {
	st, _ := newTestStore(30 * time.Minute)
	st.Get("U1")
	st.Delete("U1")
	if st.Len() != 0 {
		t.Errorf("Len = %d, want 0", st.Len())
	}
}

func TestDoSerializesPerUser(t *testing.T) {
	st, _ := newTestStore(30 * time.Minute)

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = st.Do("U1", func(s *Session) error {
				// Non-atomic read-modify-write; lost updates would show up
				// as a short image list.
				paths := s.ImagePaths
				paths = append(paths, "img")
				s.ImagePaths = paths
				st.Update(s)
				return nil
			})
		}()
	}
	wg.Wait()

	if got := len(st.Get("U1").ImagePaths); got != workers {
		t.Errorf("image count = %d, want %d (lost updates)", got, workers)
	}
}

func TestDoStaysSerializedAcrossEviction(t *testing.T) {
	st, _ := newTestStore(30 * time.Minute)

	entered := make(chan struct{})
	release := make(chan struct{})
	first := make(chan struct{})
	go func() {
		_ = st.Do("U1", func(s *Session) error {
			close(entered)
			<-release
			return nil
		})
		close(first)
	}()

	// Evicting the user mid-handler must not hand a fresh key lock to the
	// next message.
	<-entered
	st.Delete("U1")

	second := make(chan struct{})
	go func() {
		_ = st.Do("U1", func(s *Session) error { return nil })
		close(second)
	}()

	select {
	case <-second:
		t.Fatal("second handler ran while the first still held the user lock")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	<-first
	<-second
}

func TestDoDifferentUsersDoNotBlock(t *testing.T) {
	st, _ := newTestStore(30 * time.Minute)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = st.Do("U1", func(s *Session) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	done := make(chan struct{})
	go func() {
		_ = st.Do("U2", func(s *Session) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("operation for a different user blocked")
	}
	close(release)
}
