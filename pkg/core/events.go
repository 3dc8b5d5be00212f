package core

// Subscribers 有序的事件处理器列表
// 按注册顺序同步调用，不做并发保护：注册应在事件开始发布之前完成
type Subscribers[E any] struct {
	handlers []func(E)
}

// Subscribe 注册一个处理器
func (s *Subscribers[E]) Subscribe(handler func(E)) {
	if handler == nil {
		return
	}
	s.handlers = append(s.handlers, handler)
}

// Publish 依次调用所有处理器
func (s *Subscribers[E]) Publish(event E) {
	for _, h := range s.handlers {
		h(event)
	}
}

// Len 已注册的处理器数量
func (s *Subscribers[E]) Len() int {
	return len(s.handlers)
}
