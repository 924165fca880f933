// Command organize shuffles raw banana images into YOLO train/val/test
// splits. One-shot offline utility; run it from the repo root before
// training.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// Folder names in the raw datasets mapped onto the three model classes
// (0=Mentah, 1=Matang, 2=Busuk).
var classMapping = map[string]int{
	"unripe":          0,
	"ripe":            1,
	"overripe":        2,
	"rotten":          2,
	"Mentah":          0,
	"Setengah-mentah": 0,
	"Matang":          1,
	"Terlalu-matang":  2,
}

var classNames = []string{"Mentah", "Matang", "Busuk"}

const (
	trainRatio = 0.7
	valRatio   = 0.2
)

type rawImage struct {
	path      string
	classID   int
	className string
}

func main() {
	baseDir := flag.String("base", ".", "project base directory")
	seed := flag.Int64("seed", 42, "shuffle seed")
	flag.Parse()

	rawDir := filepath.Join(*baseDir, "datasets", "raw")
	imagesDir := filepath.Join(*baseDir, "datasets", "images")
	labelsDir := filepath.Join(*baseDir, "datasets", "labels")

	for _, split := range []string{"train", "val", "test"} {
		for _, dir := range []string{imagesDir, labelsDir} {
			if err := os.MkdirAll(filepath.Join(dir, split), 0755); err != nil {
				log.Fatalf("Failed to create %s: %v", filepath.Join(dir, split), err)
			}
		}
	}

	images, err := collectImages(rawDir)
	if err != nil {
		log.Fatalf("Failed to scan raw datasets: %v", err)
	}
	if len(images) == 0 {
		log.Fatalf("No images found under %s", rawDir)
	}
	fmt.Printf("Found %d images total\n", len(images))

	rand.New(rand.NewSource(*seed)).Shuffle(len(images), func(i, j int) {
		images[i], images[j] = images[j], images[i]
	})

	trainSize := int(float64(len(images)) * trainRatio)
	valSize := int(float64(len(images)) * valRatio)

	splits := map[string][]rawImage{
		"train": images[:trainSize],
		"val":   images[trainSize : trainSize+valSize],
		"test":  images[trainSize+valSize:],
	}

	for _, split := range []string{"train", "val", "test"} {
		if err := copySplit(split, splits[split], imagesDir, labelsDir); err != nil {
			log.Fatalf("Failed to organize %s split: %v", split, err)
		}
	}

	if err := writeDatasetYAML(filepath.Join(*baseDir, "datasets", "dataset.yaml")); err != nil {
		log.Fatalf("Failed to write dataset.yaml: %v", err)
	}

	printSummary(splits)
}

// collectImages walks every dataset under rawDir and picks up images whose
// parent folder name maps to a known class.
func collectImages(rawDir string) ([]rawImage, error) {
	var images []rawImage

	err := filepath.Walk(rawDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			return nil
		}

		folder := filepath.Base(filepath.Dir(path))
		classID, ok := classMapping[folder]
		if !ok {
			return nil
		}

		images = append(images, rawImage{path: path, classID: classID, className: folder})
		return nil
	})

	return images, err
}

// copySplit copies each image into its split folder under a stable name and
// writes a full-frame YOLO label next to it. The dummy box mirrors the
// original pipeline; real boxes come from annotation later.
func copySplit(split string, images []rawImage, imagesDir, labelsDir string) error {
	fmt.Printf("Processing %s split (%d images)...\n", split, len(images))

	for idx, img := range images {
		name := fmt.Sprintf("%s_%s_%04d%s", img.className, split, idx+1, strings.ToLower(filepath.Ext(img.path)))

		if err := copyFile(img.path, filepath.Join(imagesDir, split, name)); err != nil {
			return err
		}

		label := fmt.Sprintf("%d 0.5 0.5 0.8 0.8\n", img.classID)
		labelName := strings.TrimSuffix(name, filepath.Ext(name)) + ".txt"
		if err := os.WriteFile(filepath.Join(labelsDir, split, labelName), []byte(label), 0644); err != nil {
			return err
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func writeDatasetYAML(path string) error {
	content := `# Banana Detection Dataset Configuration

path: ../datasets
train: images/train
val: images/val
test: images/test

nc: 3

names: ['Mentah', 'Matang', 'Busuk']
`
	return os.WriteFile(path, []byte(content), 0644)
}

func printSummary(splits map[string][]rawImage) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("DATASET SUMMARY")
	fmt.Println(strings.Repeat("=", 60))

	for _, split := range []string{"train", "val", "test"} {
		images := splits[split]
		fmt.Printf("\n%s: %d images\n", strings.ToUpper(split), len(images))

		counts := make(map[int]int)
		for _, img := range images {
			counts[img.classID]++
		}
		for classID, name := range classNames {
			fmt.Printf("  - %s: %d images\n", name, counts[classID])
		}
	}
}
