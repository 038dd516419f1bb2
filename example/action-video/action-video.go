package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/swdee/go-actiondetect"
	"github.com/swdee/go-actiondetect/action"
	"github.com/swdee/go-actiondetect/client"
	"github.com/swdee/go-actiondetect/postprocess"
	"github.com/swdee/go-actiondetect/render"
	"gocv.io/x/gocv"
)

func main() {

	// read in cli flags
	cfgFile := flag.String("c", "../data/config.yaml", "YAML configuration file")
	vidFile := flag.String("v", "../data/videos/11_short.mp4", "Video file to run action detection on")
	outDir := flag.String("o", "runs/inference/det", "Directory to write the annotated video to")
	batchSize := flag.Int("b", 8, "Number of frames sent to the Model per request")

	flag.Parse()

	logger := logrus.New()

	cfg, err := actiondetect.LoadConfig(*cfgFile)

	if err != nil {
		logger.Fatalf("Error loading config: %v", err)
	}

	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(lvl)
	}

	reg, err := cfg.Registry()

	if err != nil {
		logger.Fatalf("Error building label registry: %v", err)
	}

	det := action.NewActionDetector(
		client.NewHTTPDetector(cfg.Inference.URL, cfg.Weight, cfg.Inference.Timeout, logger),
		reg, cfg.Exclude...)

	renderer := render.NewRenderer(render.DefaultStyles(), render.DefaultFont(),
		cfg.Render.LineThickness)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Fatalf("Error creating output directory: %v", err)
	}

	stem := strings.TrimSuffix(filepath.Base(*vidFile), filepath.Ext(*vidFile))
	outFile := filepath.Join(*outDir, stem+"_output.mp4")

	if err := annotate(context.Background(), det, renderer, *vidFile, outFile,
		*batchSize, logger); err != nil {
		logger.Fatalf("Error annotating video: %v", err)
	}

	logger.Infof("saved results in %s", outFile)
}

// annotate reads every frame of vidFile, draws the detected actions on it
// and writes the frames to outFile
func annotate(ctx context.Context, det *action.ActionDetector, renderer *render.Renderer,
	vidFile, outFile string, batchSize int, logger *logrus.Logger) error {

	// open handle to read frames of video file
	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return fmt.Errorf("error opening video: %w", err)
	}

	defer video.Close()

	w := int(video.Get(gocv.VideoCaptureFrameWidth))
	h := int(video.Get(gocv.VideoCaptureFrameHeight))
	fps := video.Get(gocv.VideoCaptureFPS)
	frameTotal := int(video.Get(gocv.VideoCaptureFrameCount))

	writer, err := gocv.VideoWriterFile(outFile, "mp4v", fps, w, h, true)

	if err != nil {
		return fmt.Errorf("error creating video writer: %w", err)
	}

	defer writer.Close()

	logger.WithFields(logrus.Fields{
		"video":  vidFile,
		"size":   fmt.Sprintf("%dx%d", w, h),
		"fps":    fps,
		"frames": frameTotal,
	}).Info("annotating video")

	batch := actiondetect.NewBatch(batchSize)
	defer batch.Close()

	img := gocv.NewMat()
	defer img.Close()

	frameNum := 0

	for {
		// read the next frame from the video
		if ok := video.Read(&img); !ok {
			// reached last video frame
			break
		}

		if img.Empty() {
			continue
		}

		if err := batch.Add(img); err != nil {
			return err
		}

		if !batch.Full() {
			continue
		}

		if err := flush(ctx, det, renderer, batch, writer, frameNum, logger); err != nil {
			return err
		}

		frameNum += batch.Len()
		batch.Clear()
	}

	// remaining partial batch
	if batch.Len() > 0 {
		if err := flush(ctx, det, renderer, batch, writer, frameNum, logger); err != nil {
			return err
		}
	}

	return nil
}

// flush runs detection over the batched frames then renders and writes them
// in order
func flush(ctx context.Context, det *action.ActionDetector, renderer *render.Renderer,
	batch *actiondetect.Batch, writer *gocv.VideoWriter, frameNum int,
	logger *logrus.Logger) error {

	frames := batch.Frames()
	groups, err := det.BatchPredict(ctx, frames)

	if err != nil {
		return fmt.Errorf("error detecting frames %d-%d: %w", frameNum, frameNum+len(frames)-1, err)
	}

	for i := range frames {

		renderer.RenderGroup(render.NewMatCanvas(&frames[i]), groups[i])

		if err := writer.Write(frames[i]); err != nil {
			return fmt.Errorf("error writing frame %d: %w", frameNum+i, err)
		}

		for _, s := range postprocess.Summarize(groups[i]) {
			if s.Count == 0 {
				continue
			}

			logger.WithFields(logrus.Fields{
				"frame":     frameNum + i,
				"label":     s.Label,
				"count":     s.Count,
				"mean_conf": fmt.Sprintf("%.2f", s.MeanConf),
			}).Debug("detections")
		}
	}

	return nil
}
