//go:build ignore

// gen_fixtures lays out a small blog workspace covering every status
// bucket, for trying postkit by hand.
// Usage: go run gen_fixtures.go <workspace_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

var posts = map[string]string{
	// matched
	"2025-07-01-aws-lambda.md": "---\ntitle: AWS Lambda 시작하기\ncategories: [aws]\ntags: [lambda, serverless]\nimage: /assets/img/posts/2025-07-01-aws-lambda.png\n---\n\nDeploy a Python function with AWS Lambda.\n",
	// incorrect_path: thumbnail exists as .jpg
	"2025-07-02-django-views.md": "---\ntitle: Django class based views\ncategories: [django]\nimage: /assets/img/posts/2025-07-02-django-views.png\n---\n\n```html\n{% for post in posts %}\n<li>{{ post.title }}</li>\n{% endfor %}\n```\n",
	// incorrect_path: image field empty, thumbnail present
	"2025-07-03-yolo-detection.md": "---\ntitle: YOLO object detection\ncategories: [ai]\ntags: [yolo, opencv]\n---\n\nTraining YOLO with PyTorch.\n",
	// unmatched
	"2025-07-04-firebase-messaging.md": "---\ntitle: Firebase Cloud Messaging\ncategories: [firebase]\n---\n\nPush notifications with FCM.\n",
	// no header
	"notes.md": "plain notes without a header\n",
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <workspace_dir>")
		os.Exit(1)
	}
	ws := os.Args[1]
	postsDir := filepath.Join(ws, "_posts")
	imagesDir := filepath.Join(ws, "assets", "img", "posts")
	must(os.MkdirAll(postsDir, 0o755))
	must(os.MkdirAll(imagesDir, 0o755))

	for name, content := range posts {
		must(os.WriteFile(filepath.Join(postsDir, name), []byte(content), 0o644))
	}

	writePNG(filepath.Join(imagesDir, "2025-07-01-aws-lambda.png"), gradient(240, 126, 0x23, 0x2f, 0x3e))
	writeJPEG(filepath.Join(imagesDir, "2025-07-02-django-views.jpg"), gradient(240, 126, 0x0c, 0x4b, 0x33))
	writePNG(filepath.Join(imagesDir, "2025-07-03-yolo-detection.png"), gradient(240, 126, 0x0c, 0x0a, 0x09))
	// orphan
	writePNG(filepath.Join(imagesDir, "2024-12-31-old-post.png"), gradient(240, 126, 0x1f, 0x29, 0x37))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created %d posts and 4 thumbnails in %s\n", len(posts), ws)
}

func gradient(w, h int, r, g, b uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: r + uint8(x*60/w),
				G: g + uint8(y*60/h),
				B: b,
				A: 255,
			})
		}
	}
	return img
}

func writePNG(path string, img image.Image) {
	f, err := os.Create(path)
	must(err)
	defer f.Close()
	must(png.Encode(f, img))
}

func writeJPEG(path string, img image.Image) {
	f, err := os.Create(path)
	must(err)
	defer f.Close()
	must(jpeg.Encode(f, img, &jpeg.Options{Quality: 85}))
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
