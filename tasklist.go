package threadpool

import (
	"container/heap"
)

const listCap = 64

// taskHeap is a max-heap by priority; equal priorities keep insertion order.
type taskHeap[T any] []*Task[T]

func (h taskHeap[T]) Len() int { return len(h) }
func (h taskHeap[T]) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap[T]) Push(x any) {
	t := x.(*Task[T])
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap[T]) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// taskList holds tasks ordered for dispatch and indexed by id.
//
// A task may belong to one list at a time. taskList is not safe for
// concurrent use; the pool mutates it only while holding its lock.
type taskList[T any] struct {
	h    taskHeap[T]
	byID map[TaskID]*Task[T]
	seq  uint64
}

func newTaskList[T any]() *taskList[T] {
	return &taskList[T]{
		h:    make(taskHeap[T], 0, listCap),
		byID: make(map[TaskID]*Task[T]),
	}
}

// Insert places t after every task of equal or higher priority.
// A nil task is rejected.
func (l *taskList[T]) Insert(t *Task[T]) bool {
	if t == nil {
		return false
	}
	l.seq++
	t.seq = l.seq
	heap.Push(&l.h, t)
	l.byID[t.id] = t
	return true
}

// Pop removes and returns the highest-priority, oldest task, or nil.
func (l *taskList[T]) Pop() *Task[T] {
	if len(l.h) == 0 {
		return nil
	}
	t := heap.Pop(&l.h).(*Task[T])
	delete(l.byID, t.id)
	return t
}

// Remove unlinks the task with the given id. Absent ids return nil.
func (l *taskList[T]) Remove(id TaskID) *Task[T] {
	t, ok := l.byID[id]
	if !ok {
		return nil
	}
	heap.Remove(&l.h, t.index)
	delete(l.byID, id)
	return t
}

// Get reports the task with the given id without unlinking it.
func (l *taskList[T]) Get(id TaskID) *Task[T] {
	return l.byID[id]
}

// Clear unlinks every member and abandons the ones that have not been
// claimed for execution, returning their ids in the order they would have
// been dispatched.
func (l *taskList[T]) Clear() []TaskID {
	if len(l.h) == 0 {
		return nil
	}
	var ids []TaskID
	for len(l.h) > 0 {
		t := heap.Pop(&l.h).(*Task[T])
		if !t.abandon() {
			// claimed by a direct Exec call; that call owns it now
			continue
		}
		t.destroy()
		ids = append(ids, t.id)
	}
	clear(l.byID)
	return ids
}

func (l *taskList[T]) Len() int { return len(l.h) }
