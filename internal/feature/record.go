// Package feature merges the face metrics and both normalized hands of one
// frame into a telemetry record with a fixed key set.
package feature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/cagatay-softgineer/MediaPipe/internal/geometry"
	"github.com/cagatay-softgineer/MediaPipe/internal/hand"
	"github.com/cagatay-softgineer/MediaPipe/internal/landmark"
)

// Fixed metric keys, in wire order.
const (
	KeyGap               = "gap"
	KeyNod               = "nod"
	KeyTurn              = "turn"
	KeyBlinkR            = "blinkR"
	KeyBlinkL            = "blinkL"
	KeyNoseToChin        = "nose_2_chin_dist"
	KeyMouthOpeningAngle = "mouth_opening_angle"
	KeyEyeToChinRatio    = "eye_2_chin_ratio"
)

var metricKeys = [...]string{
	KeyGap, KeyNod, KeyTurn, KeyBlinkR, KeyBlinkL,
	KeyNoseToChin, KeyMouthOpeningAngle, KeyEyeToChinRatio,
}

var keys = buildKeys()

func buildKeys() []string {
	out := make([]string, 0, len(metricKeys)+2*landmark.HandPoints)
	out = append(out, metricKeys[:]...)
	for _, side := range hand.Sides {
		for id := 0; id < landmark.HandPoints; id++ {
			out = append(out, HandKey(side, id))
		}
	}
	return out
}

// HandKey returns the telemetry key of one hand landmark, for example
// "Left_Hand_WRIST_Pose".
func HandKey(side hand.Side, id int) string {
	return string(side) + "_Hand_" + landmark.HandNames[id] + "_Pose"
}

// Keys returns every record key in wire order. The slice is a copy.
func Keys() []string {
	return append([]string(nil), keys...)
}

// Record is one frame of telemetry.
type Record struct {
	Gap               float64
	Nod               float64
	Turn              float64
	BlinkR            float64
	BlinkL            float64
	NoseToChin        float64
	MouthOpeningAngle float64
	EyeToChinRatio    float64

	Left  hand.Array
	Right hand.Array
}

// Aggregate builds a record from face metrics and the two hand arrays.
func Aggregate(m geometry.Metrics, left, right hand.Array) Record {
	return Record{
		Gap:               m.Gap,
		Nod:               m.Nod,
		Turn:              m.Turn,
		BlinkR:            m.BlinkR,
		BlinkL:            m.BlinkL,
		NoseToChin:        m.NoseToChin,
		MouthOpeningAngle: m.MouthOpeningAngle,
		EyeToChinRatio:    m.EyeToChinRatio,
		Left:              left,
		Right:             right,
	}
}

func (r *Record) metrics() [len(metricKeys)]*float64 {
	return [...]*float64{
		&r.Gap, &r.Nod, &r.Turn, &r.BlinkR, &r.BlinkL,
		&r.NoseToChin, &r.MouthOpeningAngle, &r.EyeToChinRatio,
	}
}

func (r *Record) side(s hand.Side) *hand.Array {
	if s == hand.Left {
		return &r.Left
	}
	return &r.Right
}

// MarshalJSON writes every key in wire order. Non-finite numbers are written
// as 0 so the output is always valid JSON.
func (r Record) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 4096)
	buf = append(buf, '{')

	for i, v := range r.metrics() {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendQuote(buf, metricKeys[i])
		buf = append(buf, ':')
		buf = appendFloat(buf, *v)
	}

	for _, s := range hand.Sides {
		arr := r.side(s)
		for id, p := range arr {
			buf = append(buf, ',')
			buf = strconv.AppendQuote(buf, HandKey(s, id))
			buf = append(buf, ':')
			if p == nil {
				buf = append(buf, "null"...)
				continue
			}
			buf = append(buf, '[')
			buf = appendFloat(buf, p.X)
			buf = append(buf, ',')
			buf = appendFloat(buf, p.Y)
			buf = append(buf, ',')
			buf = appendFloat(buf, p.Z)
			buf = append(buf, ']')
		}
	}

	buf = append(buf, '}')
	return buf, nil
}

func appendFloat(buf []byte, v float64) []byte {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return strconv.AppendFloat(buf, v, 'g', -1, 64)
}

// UnmarshalJSON reads a record written by MarshalJSON. Unknown keys are
// ignored, missing keys keep their zero value.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record{}
	for i, v := range r.metrics() {
		msg, ok := raw[metricKeys[i]]
		if !ok || isNull(msg) {
			continue
		}
		if err := json.Unmarshal(msg, v); err != nil {
			return fmt.Errorf("%s: %w", metricKeys[i], err)
		}
	}

	for _, s := range hand.Sides {
		arr := r.side(s)
		for id := range arr {
			key := HandKey(s, id)
			msg, ok := raw[key]
			if !ok || isNull(msg) {
				continue
			}
			var xyz [3]float64
			if err := json.Unmarshal(msg, &xyz); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			arr[id] = &landmark.Point{X: xyz[0], Y: xyz[1], Z: xyz[2]}
		}
	}
	return nil
}

func isNull(msg json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}
