// Package history 保存一次会话的全部观测样本
// Store只由消费者goroutine访问，不做任何同步
package history

import (
	"slices"
	"sort"
	"time"

	"github.com/Kevin-Rudy/pingtrack/pkg/core"
)

// Store 按到达顺序追加、按需排序的样本集合
type Store struct {
	samples   []core.Sample
	sorted    bool
	session   core.Stats[uint32] // 会话累计统计，可被用户重置
	retention time.Duration      // 0表示不淘汰
}

// NewStore 创建样本存储，retention为0时保留全部样本
func NewStore(retention time.Duration) *Store {
	return &Store{
		sorted:    true,
		session:   core.NewStats[uint32](),
		retention: retention,
	}
}

// Record 追加一个样本，可达时同时更新会话统计
func (s *Store) Record(sample core.Sample) {
	if n := len(s.samples); n > 0 && sample.Timestamp < s.samples[n-1].Timestamp {
		s.sorted = false
	}
	s.samples = append(s.samples, sample)

	if ms, ok := core.MillisAs[uint32](sample.Outcome); ok {
		s.session.Update(ms, true)
	}
}

// TryDrain 非阻塞地取出通道中当前排队的全部样本
// 每个样本先写入存储再交给fn；通道已关闭时closed为true
func (s *Store) TryDrain(ch <-chan core.Sample, fn func(core.Sample)) (n int, closed bool) {
	for {
		select {
		case sample, ok := <-ch:
			if !ok {
				return n, true
			}
			s.Record(sample)
			n++
			if fn != nil {
				fn(sample)
			}
		default:
			return n, false
		}
	}
}

// Sort 按时间戳升序排序，已有序时不做任何事
func (s *Store) Sort() {
	if s.sorted {
		return
	}
	slices.SortStableFunc(s.samples, func(a, b core.Sample) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	s.sorted = true
}

// Sorted 当前是否有序
func (s *Store) Sorted() bool {
	return s.sorted
}

// Samples 返回内部切片，调用方不得修改
// 聚合、提取和写日志之前必须先调用Sort
func (s *Store) Samples() []core.Sample {
	return s.samples
}

// Len 样本数量
func (s *Store) Len() int {
	return len(s.samples)
}

// Session 会话累计统计
func (s *Store) Session() core.Stats[uint32] {
	return s.session
}

// ResetSession 只清空会话统计，样本保持不变
func (s *Store) ResetSession() {
	s.session.Clear()
}

// Compact 按保留期淘汰旧样本，返回被淘汰的前缀
// 会先排序；retention为0时不淘汰
// 切点不会落在连续的不可达样本中间，离线区间总是完整地留在一侧
func (s *Store) Compact(now time.Time) []core.Sample {
	if s.retention <= 0 || len(s.samples) == 0 {
		return nil
	}
	s.Sort()

	cutoff := now.Add(-s.retention).UnixNano()
	i := sort.Search(len(s.samples), func(i int) bool {
		return s.samples[i].Timestamp >= cutoff
	})
	for i > 0 && !s.samples[i-1].Outcome.IsReachable() {
		i--
	}
	if i == 0 {
		return nil
	}

	dropped := s.samples[:i]
	// 拷贝到新切片，释放旧底层数组
	s.samples = append([]core.Sample(nil), s.samples[i:]...)
	return dropped
}
