package touchpad

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalidCalibration is wrapped by every error reporting unusable
// calibration values.
var ErrInvalidCalibration = errors.New("touchpad: invalid calibration")

// Calibration maps raw sensor units onto screen pixels.
//
// XMin..XMax and YMin..YMax are the raw readings at the panel edges.
// PixelWidth is the number of pixels along the sensor X axis and PixelHeight
// the number along the sensor Y axis; with Transpose set the sensor X axis
// runs down the screen, so PixelWidth is then the screen height.
type Calibration struct {
	XMin int `json:"x_min"`
	YMin int `json:"y_min"`
	XMax int `json:"x_max"`
	YMax int `json:"y_max"`

	PixelWidth  int `json:"pixel_width"`
	PixelHeight int `json:"pixel_height"`

	// Mapping. Reflections apply before the transposition.
	Transpose  bool `json:"transpose"`
	RowReflect bool `json:"row_reflect"`
	ColReflect bool `json:"col_reflect"`
}

// SensorMax is the full scale of the 12-bit converters the package targets.
const SensorMax = 4095

// MaxPixels bounds the pixel counts so that Mapper products fit in 32 bits.
const MaxPixels = 8192

// DefaultCalibration spans the full range of a 12-bit controller. Pixel
// counts are left zero so that New fills them from the display.
var DefaultCalibration = Calibration{XMax: SensorMax, YMax: SensorMax}

// Validate reports whether c can be used to map coordinates.
func (c Calibration) Validate() error {
	if err := c.validateRange(); err != nil {
		return err
	}
	if c.PixelWidth <= 0 || c.PixelHeight <= 0 {
		return fmt.Errorf("%w: pixel size %dx%d must be positive", ErrInvalidCalibration, c.PixelWidth, c.PixelHeight)
	}
	return nil
}

// validateRange checks everything but the pixel counts, which New may still
// fill in from the display.
func (c Calibration) validateRange() error {
	if c.XMin < 0 || c.YMin < 0 || c.XMax > SensorMax || c.YMax > SensorMax {
		return fmt.Errorf("%w: raw range x %d..%d, y %d..%d exceeds 0..%d", ErrInvalidCalibration, c.XMin, c.XMax, c.YMin, c.YMax, SensorMax)
	}
	if c.XMax <= c.XMin {
		return fmt.Errorf("%w: x_max %d must be greater than x_min %d", ErrInvalidCalibration, c.XMax, c.XMin)
	}
	if c.YMax <= c.YMin {
		return fmt.Errorf("%w: y_max %d must be greater than y_min %d", ErrInvalidCalibration, c.YMax, c.YMin)
	}
	if c.PixelWidth < 0 || c.PixelHeight < 0 {
		return fmt.Errorf("%w: negative pixel size %dx%d", ErrInvalidCalibration, c.PixelWidth, c.PixelHeight)
	}
	if c.PixelWidth >= MaxPixels || c.PixelHeight >= MaxPixels {
		return fmt.Errorf("%w: pixel size %dx%d must be below %d", ErrInvalidCalibration, c.PixelWidth, c.PixelHeight, MaxPixels)
	}
	return nil
}

// Screen returns the number of screen rows and columns covered by c.
func (c Calibration) Screen() (rows, cols int) {
	if c.Transpose {
		return c.PixelWidth, c.PixelHeight
	}
	return c.PixelHeight, c.PixelWidth
}

// String formats c as the argument line printed for the operator.
func (c Calibration) String() string {
	return fmt.Sprintf("Args: %d, %d, %d, %d, %d, %d, transpose=%t, row_reflect=%t, col_reflect=%t",
		c.PixelWidth, c.PixelHeight, c.XMin, c.YMin, c.XMax, c.YMax, c.Transpose, c.RowReflect, c.ColReflect)
}

// LoadCalibration reads a calibration written by SaveCalibration.
func LoadCalibration(path string) (Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("touchpad: failed to read calibration: %w", err)
	}
	c := DefaultCalibration
	if err := json.Unmarshal(data, &c); err != nil {
		return Calibration{}, fmt.Errorf("touchpad: failed to parse calibration %s: %w", path, err)
	}
	if err := c.validateRange(); err != nil {
		return Calibration{}, err
	}
	return c, nil
}

// SaveCalibration writes c to path as indented JSON, creating parent
// directories as needed.
func SaveCalibration(path string, c Calibration) error {
	if err := c.validateRange(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("touchpad: failed to encode calibration: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("touchpad: failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("touchpad: failed to write calibration: %w", err)
	}
	return nil
}
