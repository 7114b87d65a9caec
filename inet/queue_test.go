package inet

import (
	"bytes"
	"testing"
)

func TestQueue(t *testing.T) {
	t.Parallel()

	q := Queue{}
	if q.Len() != 0 || q.front != nil || q.back != nil {
		t.Error("queue should start empty")
	}
	if q.Dequeue() != nil {
		t.Error("dequeue of an empty queue should be nil")
	}
}

func TestQueue_Order(t *testing.T) {
	t.Parallel()

	test1 := []byte{1, 2, 3}
	test2 := []byte{4, 5, 6}
	test3 := []byte{7}

	q := Queue{}
	q.Enqueue()
	if q.Len() != 0 {
		t.Error("enqueue of nothing should do nothing")
	}

	q.Enqueue(test1)
	q.Enqueue(test2, test3)
	if q.Len() != 3 {
		t.Error("expected 3 lines, got:", q.Len())
	}

	for i, want := range [][]byte{test1, test2, test3} {
		if got := q.Dequeue(); !bytes.Equal(got, want) {
			t.Errorf("%d) expected %v got %v", i, want, got)
		}
	}

	if q.front != nil || q.back != nil || q.Len() != 0 {
		t.Error("queue should be empty again")
	}

	q.Enqueue(test1)
	if q.front != q.back {
		t.Error("a single line should be both front and back")
	}
}
