/*
Package metadata resolves the raw header fields of a Nanonis SXM file
into typed scan parameters and channel definitions.
*/
package metadata

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bodgit/sxm/header"
)

// Header keys the resolver interprets. All except keyZ are required.
const (
	keyScanFile    = "SCAN_FILE"
	keyScanPixels  = "SCAN_PIXELS"
	keyScanRange   = "SCAN_RANGE"
	keyScanOffset  = "SCAN_OFFSET"
	keyScanAngle   = "SCAN_ANGLE"
	keyScanDir     = "SCAN_DIR"
	keyBias        = "BIAS"
	keyZController = "Z-CONTROLLER"
	keyRecDate     = "REC_DATE"
	keyRecTime     = "REC_TIME"
	keyAcqTime     = "ACQ_TIME"
	keyDataInfo    = "DATA_INFO"
	keyZ           = "Z-CONTROLLER_Z (m)"
)

// timeLayout matches the combined REC_DATE and REC_TIME values, e.g.
// "15.03.2024 14:30:05".
const timeLayout = "02.01.2006 15:04:05"

// Slow scan axis directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

const zControllerFields = 10

// Channel describes one recorded channel.
type Channel struct {
	Name string
	Unit string
}

// Metadata holds the typed scan parameters of one image. Lengths and
// offsets are in meters, the bias in volts and the acquisition time in
// seconds.
type Metadata struct {
	ScanFile        string
	XPixels         int
	YPixels         int
	Width           float64
	Height          float64
	CenterX         float64
	CenterY         float64
	Angle           float64 // degrees
	Direction       string
	Bias            float64
	ZFeedback       bool
	ZSetpoint       float64
	ZSetpointUnit   string
	Z               *float64 // tip height, nil if not recorded
	Started         time.Time
	AcquisitionTime float64
	Channels        []Channel
}

// MissingFieldError is returned when a required header field is
// absent.
type MissingFieldError struct {
	Key string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("metadata: missing header field %q", e.Key)
}

// MalformedFieldError is returned when a required header field does
// not parse into its expected shape.
type MalformedFieldError struct {
	Key    string
	Detail string
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("metadata: malformed header field %q: %s", e.Key, e.Detail)
}

// UnsupportedDirectionError is returned for a channel recorded in a
// single scan direction. Decoding such files is not implemented;
// distinguishing this from a malformed header lets callers report it
// as an unsupported variant rather than a broken file.
type UnsupportedDirectionError struct {
	Row string
}

func (e *UnsupportedDirectionError) Error() string {
	return fmt.Sprintf("metadata: channel not recorded in both directions: %q", e.Row)
}

// Resolve types the raw header fields. Forward and backward positions
// in the binary payload are implied by channel order and are not
// stored; channel i occupies flat slots 2i and 2i+1.
func Resolve(h *header.Map) (*Metadata, error) {
	m := new(Metadata)

	var err error
	if m.ScanFile, err = requireField(h, keyScanFile); err != nil {
		return nil, err
	}

	if m.XPixels, m.YPixels, err = intPair(h, keyScanPixels); err != nil {
		return nil, err
	}
	if m.XPixels <= 0 || m.YPixels <= 0 {
		return nil, &MalformedFieldError{keyScanPixels, "pixel counts must be positive"}
	}
	if m.Width, m.Height, err = floatPair(h, keyScanRange); err != nil {
		return nil, err
	}
	if m.CenterX, m.CenterY, err = floatPair(h, keyScanOffset); err != nil {
		return nil, err
	}
	if m.Angle, err = float(h, keyScanAngle); err != nil {
		return nil, err
	}

	dir, err := requireField(h, keyScanDir)
	if err != nil {
		return nil, err
	}
	// Anything other than the exact literal "up" folds to "down"
	if dir == DirectionUp {
		m.Direction = DirectionUp
	} else {
		m.Direction = DirectionDown
	}

	if m.Bias, err = float(h, keyBias); err != nil {
		return nil, err
	}

	if err = m.resolveZController(h); err != nil {
		return nil, err
	}

	if raw, ok := h.Lookup(keyZ); ok {
		z, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &MalformedFieldError{keyZ, err.Error()}
		}
		m.Z = &z
	}

	date, err := requireField(h, keyRecDate)
	if err != nil {
		return nil, err
	}
	tod, err := requireField(h, keyRecTime)
	if err != nil {
		return nil, err
	}
	if m.Started, err = time.Parse(timeLayout, date+" "+tod); err != nil {
		return nil, &MalformedFieldError{keyRecDate, fmt.Sprintf("%q does not match day.month.year hour:minute:second", date+" "+tod)}
	}

	if m.AcquisitionTime, err = float(h, keyAcqTime); err != nil {
		return nil, err
	}

	info, err := requireField(h, keyDataInfo)
	if err != nil {
		return nil, err
	}
	if m.Channels, err = parseChannels(info); err != nil {
		return nil, err
	}

	return m, nil
}

// resolveZController unpacks the tab-separated Z-CONTROLLER row;
// element 8 is the feedback flag and element 9 the setpoint with an
// optional unit.
func (m *Metadata) resolveZController(h *header.Map) error {
	raw, err := requireField(h, keyZController)
	if err != nil {
		return err
	}

	fields := strings.Split(raw, "\t")
	if len(fields) < zControllerFields {
		return &MalformedFieldError{keyZController, fmt.Sprintf("want at least %d tab-separated elements, got %d", zControllerFields, len(fields))}
	}

	m.ZFeedback = fields[8] == "1"

	setpoint := strings.Fields(fields[9])
	if len(setpoint) == 0 {
		return &MalformedFieldError{keyZController, "empty setpoint"}
	}
	if m.ZSetpoint, err = strconv.ParseFloat(setpoint[0], 64); err != nil {
		return &MalformedFieldError{keyZController, err.Error()}
	}
	if len(setpoint) > 1 {
		m.ZSetpointUnit = setpoint[1]
	}

	return nil
}

func requireField(h *header.Map, key string) (string, error) {
	v, ok := h.Lookup(key)
	if !ok {
		return "", &MissingFieldError{key}
	}
	return v, nil
}

func float(h *header.Map, key string) (float64, error) {
	s, err := requireField(h, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &MalformedFieldError{key, err.Error()}
	}
	return v, nil
}

func pair(h *header.Map, key string) (string, string, error) {
	s, err := requireField(h, key)
	if err != nil {
		return "", "", err
	}
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return "", "", &MalformedFieldError{key, fmt.Sprintf("want 2 values, got %d", len(fields))}
	}
	return fields[0], fields[1], nil
}

func intPair(h *header.Map, key string) (int, int, error) {
	a, b, err := pair(h, key)
	if err != nil {
		return 0, 0, err
	}
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, &MalformedFieldError{key, err.Error()}
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, &MalformedFieldError{key, err.Error()}
	}
	return x, y, nil
}

func floatPair(h *header.Map, key string) (float64, float64, error) {
	a, b, err := pair(h, key)
	if err != nil {
		return 0, 0, err
	}
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, &MalformedFieldError{key, err.Error()}
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, &MalformedFieldError{key, err.Error()}
	}
	return x, y, nil
}
