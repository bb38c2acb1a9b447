package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestGetMiss(t *testing.T) {
	c := NewAnswerCache(10, time.Minute)
	if _, hit := c.Get("what is go", 3); hit {
		t.Error("expected miss on empty cache")
	}
}

func TestPutAndGet(t *testing.T) {
	c := NewAnswerCache(10, time.Minute)
	c.Put("what is go", 3, "a programming language")

	answer, hit := c.Get("what is go", 3)
	if !hit {
		t.Fatal("expected hit")
	}
	if answer != "a programming language" {
		t.Errorf("answer = %q", answer)
	}

	// Same question, different depth: separate entry.
	if _, hit := c.Get("what is go", 5); hit {
		t.Error("expected miss for different topK")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewAnswerCache(10, 10*time.Millisecond)
	c.Put("q", 3, "a")

	time.Sleep(20 * time.Millisecond)

	if _, hit := c.Get("q", 3); hit {
		t.Error("expected expired entry to miss")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry not removed, size = %d", c.Size())
	}
}

func TestEvictsOldestWhenFull(t *testing.T) {
	c := NewAnswerCache(3, time.Minute)
	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("q%d", i), 3, "a")
	}

	// Touch q0 so q1 becomes the oldest.
	c.Get("q0", 3)
	c.Put("q3", 3, "a")

	if _, hit := c.Get("q1", 3); hit {
		t.Error("expected q1 to be evicted")
	}
	if _, hit := c.Get("q0", 3); !hit {
		t.Error("expected q0 to survive")
	}
	if c.Size() != 3 {
		t.Errorf("size = %d", c.Size())
	}
}

func TestInvalidate(t *testing.T) {
	c := NewAnswerCache(10, time.Minute)
	c.Put("q", 3, "a")

	c.Invalidate()

	if _, hit := c.Get("q", 3); hit {
		t.Error("expected miss after invalidation")
	}
	if c.Size() != 0 {
		t.Errorf("size = %d", c.Size())
	}
}
