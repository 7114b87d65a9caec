package inet

import (
	"sync"
)

// queueNode is the node structure underneath the Queue type.
type queueNode struct {
	next *queueNode
	line []byte
}

// Queue is a singly-linked fifo of outgoing lines waiting on flood control.
// It is not meant to be used as a generic re-usable container.
type Queue struct {
	front  *queueNode
	back   *queueNode
	length int
	mutex  sync.Mutex
}

// Enqueue adds lines to the back of the queue. The lines are not copied,
// callers hand over ownership.
func (q *Queue) Enqueue(lines ...[]byte) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for _, line := range lines {
		node := &queueNode{line: line}
		if q.length == 0 {
			q.front = node
		} else {
			q.back.next = node
		}
		q.back = node
		q.length++
	}
}

// Dequeue removes the line at the front of the queue, nil if it's empty.
func (q *Queue) Dequeue() []byte {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.length == 0 {
		return nil
	}

	node := q.front
	q.front = node.next
	if q.length == 1 {
		q.back = nil
	}
	q.length--

	return node.line
}

// Len is the number of lines waiting.
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.length
}
