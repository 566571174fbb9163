package detector

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// YOLOPoseDetector runs YOLOv8-pose inference through the GoCV DNN module.
// It reports the primary person's skeleton and the higher-confidence wrist
// as the interaction pointer.
type YOLOPoseDetector struct {
	net       gocv.Net
	config    Config
	mu        sync.Mutex
	inputSize image.Point
	closed    bool
}

// poseCandidate is one raw network detection before NMS.
type poseCandidate struct {
	box       image.Rectangle
	score     float32
	keypoints []Keypoint
}

// NewYOLOPose creates a new YOLOv8-pose detector from an ONNX model file.
func NewYOLOPose(cfg Config) (*YOLOPoseDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load pose model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLOPoseDetector{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputSize, cfg.InputSize),
	}, nil
}

// Detect runs one inference on the frame and returns the pose snapshot.
func (d *YOLOPoseDetector) Detect(frame *gocv.Mat) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return Result{}, fmt.Errorf("detector is closed")
	}
	if frame == nil || frame.Empty() {
		return Result{}, fmt.Errorf("empty frame")
	}

	imgW := frame.Cols()
	imgH := frame.Rows()

	blob := gocv.BlobFromImage(*frame, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	persons := d.parsePoseOutput(output, imgW, imgH)
	return d.buildResult(persons, imgW, imgH), nil
}

// parsePoseOutput parses the YOLOv8-pose output tensor.
// Shape is [1, 56, 8400]: 4 bbox + 1 person score + 17 keypoints x (x, y, conf).
func (d *YOLOPoseDetector) parsePoseOutput(output gocv.Mat, imgW, imgH int) []poseCandidate {
	rows := output.Cols() // 8400 candidates
	cols := output.Rows() // 56 values per candidate

	data, err := output.DataPtrFloat32()
	if err != nil || cols < 5+NumKeypoints*3 {
		return nil
	}

	sx := float64(imgW) / float64(d.config.InputSize)
	sy := float64(imgH) / float64(d.config.InputSize)

	var boxes []image.Rectangle
	var confidences []float32
	var keypointSets [][]Keypoint

	for i := 0; i < rows; i++ {
		score := data[4*rows+i]
		if float64(score) < d.config.ConfThreshold {
			continue
		}

		cx := float64(data[0*rows+i])
		cy := float64(data[1*rows+i])
		w := float64(data[2*rows+i])
		h := float64(data[3*rows+i])

		x1 := int((cx - w/2) * sx)
		y1 := int((cy - h/2) * sy)
		x2 := int((cx + w/2) * sx)
		y2 := int((cy + h/2) * sy)

		kpts := make([]Keypoint, NumKeypoints)
		for k := 0; k < NumKeypoints; k++ {
			kpts[k] = Keypoint{
				X:    float64(data[(5+k*3)*rows+i]) * sx,
				Y:    float64(data[(5+k*3+1)*rows+i]) * sy,
				Conf: float64(data[(5+k*3+2)*rows+i]),
			}
		}

		boxes = append(boxes, image.Rect(x1, y1, x2, y2))
		confidences = append(confidences, score)
		keypointSets = append(keypointSets, kpts)
	}

	if len(boxes) == 0 {
		return nil
	}

	indices := gocv.NMSBoxes(boxes, confidences, float32(d.config.ConfThreshold), float32(d.config.NMSThreshold))

	persons := make([]poseCandidate, 0, len(indices))
	for _, idx := range indices {
		persons = append(persons, poseCandidate{
			box:       boxes[idx],
			score:     confidences[idx],
			keypoints: keypointSets[idx],
		})
	}
	return persons
}

// buildResult applies the scene safety filters and selects the pointer wrist.
func (d *YOLOPoseDetector) buildResult(persons []poseCandidate, imgW, imgH int) Result {
	personCount := len(persons)
	if personCount == 0 {
		return sized(EmptyResult(0, 0), imgW, imgH)
	}

	primary := persons[0]
	primaryArea := float64(primary.box.Dx()) * float64(primary.box.Dy()) /
		(float64(imgW) * float64(imgH))

	// Ambiguous scene: too many people in frame.
	if personCount > d.config.MaxPersons {
		return sized(EmptyResult(personCount, primaryArea), imgW, imgH)
	}

	// Primary person too far away to operate the kiosk.
	if primaryArea < d.config.MinPersonArea {
		return sized(EmptyResult(personCount, primaryArea), imgW, imgH)
	}

	rw := primary.keypoints[RightWrist]
	lw := primary.keypoints[LeftWrist]

	target := rw
	if lw.Conf > d.config.ConfThreshold && lw.Conf > target.Conf {
		target = lw
	}
	if target.Conf <= d.config.ConfThreshold {
		return sized(EmptyResult(personCount, primaryArea), imgW, imgH)
	}

	return Result{
		Detected:          true,
		PointX:            target.X / float64(imgW),
		PointY:            target.Y / float64(imgH),
		Confidence:        target.Conf,
		Keypoints:         primary.keypoints,
		Width:             imgW,
		Height:            imgH,
		PersonCount:       personCount,
		PrimaryPersonArea: primaryArea,
	}
}

func sized(r Result, w, h int) Result {
	r.Width = w
	r.Height = h
	return r
}

// Close releases the network resources.
func (d *YOLOPoseDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.net.Close()
}
