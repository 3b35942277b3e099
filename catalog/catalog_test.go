package catalog

import "testing"

func TestSourceURL_Hanime(t *testing.T) {
	got := Hanime.SourceURL("86994")
	want := "https://hanime1.me/watch?v=86994"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSourceURL_DLsite(t *testing.T) {
	got := DLsite.SourceURL("RJ123456")
	want := "https://www.dlsite.com/maniax/work/=/product_id/RJ123456.html"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestByKey_CaseInsensitive(t *testing.T) {
	c, ok := ByKey("  HaNiMe ")
	if !ok {
		t.Fatal("expected hanime to resolve")
	}
	if c.Key != "hanime" {
		t.Fatalf("expected key 'hanime', got %q", c.Key)
	}
}

func TestByKey_Unknown(t *testing.T) {
	if _, ok := ByKey("steam"); ok {
		t.Fatal("expected unknown catalog to miss")
	}
}

func TestAll_IsCopy(t *testing.T) {
	a := All()
	a[0].Key = "mutated"
	if b := All(); b[0].Key == "mutated" {
		t.Fatal("All must return a copy of the registry")
	}
}
