package capture

import (
	"errors"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// FaceAlignStatus describes where the user is relative to the guide box.
type FaceAlignStatus string

const (
	// FaceWaiting means no face is inside the guide box yet.
	FaceWaiting FaceAlignStatus = "waiting"
	// FaceDetecting means a face is inside the box but the hold is incomplete.
	FaceDetecting FaceAlignStatus = "detecting"
	// FaceConfirmed means the face stayed inside the box long enough.
	FaceConfirmed FaceAlignStatus = "confirmed"
)

// FaceAlignResult is the per-frame outcome of the alignment check.
type FaceAlignResult struct {
	Status   FaceAlignStatus
	GuideBox image.Rectangle
	Face     image.Rectangle
	HasFace  bool
}

// FaceChecker verifies that the user's face sits inside a centered guide
// box for a consecutive number of frames before the session starts.
// Detection uses a Haar cascade classifier.
type FaceChecker struct {
	requiredFrames int
	guideBoxRatio  float64

	cascade     gocv.CascadeClassifier
	loaded      bool
	mu          sync.Mutex
	consecutive int
}

// NewFaceChecker creates a FaceChecker from a Haar cascade XML file.
// requiredFrames is how long the face must hold inside the guide box;
// guideBoxRatio sizes the box relative to the frame height.
func NewFaceChecker(cascadePath string, requiredFrames int, guideBoxRatio float64) (*FaceChecker, error) {
	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(cascadePath) {
		cascade.Close()
		return nil, errors.New("failed to load face cascade: " + cascadePath)
	}

	return &FaceChecker{
		requiredFrames: requiredFrames,
		guideBoxRatio:  guideBoxRatio,
		cascade:        cascade,
		loaded:         true,
	}, nil
}

// Process detects the largest face in the frame and checks its position
// against the guide box. The hold counter resets whenever the face leaves
// the box or disappears.
func (f *FaceChecker) Process(frame *gocv.Mat) FaceAlignResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	if frame == nil || frame.Empty() || !f.loaded {
		f.consecutive = 0
		return FaceAlignResult{Status: FaceWaiting}
	}

	width := frame.Cols()
	height := frame.Rows()

	boxSize := int(float64(height) * f.guideBoxRatio)
	boxX := (width - boxSize) / 2
	boxY := (height - boxSize) / 2
	guideBox := image.Rect(boxX, boxY, boxX+boxSize, boxY+boxSize)

	face, ok := f.detectLargestFace(frame)
	if !ok {
		f.consecutive = 0
		return FaceAlignResult{Status: FaceWaiting, GuideBox: guideBox}
	}

	center := image.Pt(face.Min.X+face.Dx()/2, face.Min.Y+face.Dy()/2)
	if center.In(guideBox) {
		f.consecutive++
	} else {
		f.consecutive = 0
	}

	result := FaceAlignResult{GuideBox: guideBox, Face: face, HasFace: true}
	switch {
	case f.consecutive >= f.requiredFrames:
		result.Status = FaceConfirmed
	case f.consecutive > 0:
		result.Status = FaceDetecting
	default:
		result.Status = FaceWaiting
	}
	return result
}

// detectLargestFace runs the cascade on a grayscale copy and picks the
// largest rectangle (the nearest user).
func (f *FaceChecker) detectLargestFace(frame *gocv.Mat) (image.Rectangle, bool) {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	faces := f.cascade.DetectMultiScale(gray)
	if len(faces) == 0 {
		return image.Rectangle{}, false
	}

	largest := faces[0]
	for _, r := range faces[1:] {
		if r.Dx()*r.Dy() > largest.Dx()*largest.Dy() {
			largest = r
		}
	}
	return largest, true
}

// Reset clears the hold counter for a fresh alignment pass.
func (f *FaceChecker) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consecutive = 0
}

// Close releases the cascade resources.
func (f *FaceChecker) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded {
		f.cascade.Close()
		f.loaded = false
	}
}
