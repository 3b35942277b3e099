package metaclient

import (
	"fmt"
	"sync"
	"testing"
)

func TestLinkStore_UpsertAndLookup(t *testing.T) {
	s := NewLinkStore()
	s.Upsert("hanime", "1", "https://hanime1.me/watch?v=1")

	url, ok := s.Lookup("hanime", "1")
	if !ok {
		t.Fatal("expected hit")
	}
	if url != "https://hanime1.me/watch?v=1" {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestLinkStore_LastWriterWins(t *testing.T) {
	s := NewLinkStore()
	s.Upsert("hanime", "1", "first")
	s.Upsert("hanime", "1", "second")

	url, _ := s.Lookup("hanime", "1")
	if url != "second" {
		t.Fatalf("expected last write to win, got %q", url)
	}
	if s.Len() != 1 {
		t.Fatalf("expected single entry, got %d", s.Len())
	}
}

func TestLinkStore_CatalogsDoNotCollide(t *testing.T) {
	s := NewLinkStore()
	s.Upsert("hanime", "1", "h")
	s.Upsert("dlsite", "1", "d")

	if url, _ := s.Lookup("hanime", "1"); url != "h" {
		t.Fatalf("unexpected hanime url: %q", url)
	}
	if url, _ := s.Lookup("dlsite", "1"); url != "d" {
		t.Fatalf("unexpected dlsite url: %q", url)
	}
}

func TestLinkStore_Miss(t *testing.T) {
	s := NewLinkStore()
	if _, ok := s.Lookup("hanime", "absent"); ok {
		t.Fatal("expected miss")
	}
}

func TestLinkStore_ConcurrentUpserts(t *testing.T) {
	s := NewLinkStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("%d", n%10)
			s.Upsert("hanime", id, "url-"+id)
			_, _ = s.Lookup("hanime", id)
		}(i)
	}
	wg.Wait()

	if s.Len() != 10 {
		t.Fatalf("expected 10 entries, got %d", s.Len())
	}
}
