package core

// Unsigned 统计累加器支持的数值类型
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// Stats 增量统计累加器
// 默认值: Count=0, Total=0, Min=类型最大值, Max=0, Timeout=false
type Stats[T Unsigned] struct {
	Total   T
	Min     T
	Max     T
	Count   T
	Timeout bool
}

// NewStats 返回处于默认状态的累加器
func NewStats[T Unsigned]() Stats[T] {
	return Stats[T]{Min: ^T(0)}
}

// Update 累加一个结果
// ok为false表示超时，只设置Timeout标志，不影响计数和极值
func (s *Stats[T]) Update(value T, ok bool) {
	if !ok {
		s.Timeout = true
		return
	}
	if value < s.Min {
		s.Min = value
	}
	if value > s.Max {
		s.Max = value
	}
	s.Count++
	s.Total += value
}

// Average 返回截断除法的平均值，没有数据时ok为false
func (s Stats[T]) Average() (T, bool) {
	if s.Count == 0 {
		return 0, false
	}
	return s.Total / s.Count, true
}

// Mean 返回浮点平均值，用于状态显示
func (s Stats[T]) Mean() (float64, bool) {
	if s.Count == 0 {
		return 0, false
	}
	return float64(s.Total) / float64(s.Count), true
}

// Empty 窗口内没有任何有效数据
// 调用方必须把它当作"无数据"，而不是数值0
func (s Stats[T]) Empty() bool {
	return s.Count == 0
}

// Clear 重置为默认状态
func (s *Stats[T]) Clear() {
	*s = NewStats[T]()
}
