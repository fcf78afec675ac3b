package report

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/autopark-sim/entity"
	"github.com/tsinghua-fib-lab/autopark-sim/task"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// TraceWriter 逐tick输出快照，每行一个JSON对象
// 说明：通过Episode.OnStep挂载；写入失败后后续快照被丢弃，错误由Flush返回
type TraceWriter struct {
	mtx sync.Mutex
	w   *bufio.Writer
	n   int
	err error
}

func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: bufio.NewWriter(w)}
}

// Observe 写入一个快照，签名与Episode.OnStep的回调一致
func (t *TraceWriter) Observe(s task.Snapshot) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.err != nil {
		return
	}
	st, err := structpb.NewStruct(snapshotFields(s))
	if err != nil {
		t.err = fmt.Errorf("tick %d: %w", s.Tick, err)
		return
	}
	bs, err := protojson.MarshalOptions{UseProtoNames: true}.Marshal(st)
	if err != nil {
		t.err = fmt.Errorf("tick %d: %w", s.Tick, err)
		return
	}
	if _, err = t.w.Write(append(bs, '\n')); err != nil {
		t.err = err
		return
	}
	t.n++
}

// Count 已写入的快照数
func (t *TraceWriter) Count() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.n
}

func (t *TraceWriter) Flush() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}

func readingFields(r entity.SensorReading) map[string]any {
	return map[string]any{
		"frontal_distance":  r.FrontalDistance,
		"lateral_offset":    r.LateralOffset,
		"vehicle_angle":     r.VehicleAngle,
		"penetration_depth": r.PenetrationDepth,
	}
}

func snapshotFields(s task.Snapshot) map[string]any {
	m := map[string]any{
		"tick": s.Tick,
		"time": s.Time,
		"vehicle": map[string]any{
			"x":        s.Vehicle.X,
			"y":        s.Vehicle.Y,
			"heading":  s.Vehicle.Heading,
			"steering": s.Vehicle.Steering,
			"speed":    s.Vehicle.Speed,
		},
		"reading": readingFields(s.Reading),
		"input":   readingFields(s.Input),
		"decision": map[string]any{
			"steering": s.Decision.Command.Steering,
			"speed":    s.Decision.Command.Speed,
			"override": s.Decision.Override,
			"capped":   s.Decision.Capped,
			"fired": lo.Map(s.Decision.Fired, func(f entity.FiredRule, _ int) any {
				return map[string]any{"index": f.Index, "label": f.Label, "strength": f.Strength}
			}),
		},
		"outcome": s.Outcome.String(),
	}
	if s.WaypointIndex >= 0 {
		m["waypoint_index"] = s.WaypointIndex
	}
	return m
}
