package artifact

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(input.Bucket)+"/"+aws.ToString(input.Key)] = string(data)
	return &manager.UploadOutput{}, nil
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		raw, bucket, prefix string
		wantErr             bool
	}{
		{"s3://music", "music", "", false},
		{"s3://music/", "music", "", false},
		{"s3://music/library/2024/", "music", "library/2024", false},
		{"s3:///nobucket", "", "", true},
		{"https://music", "", "", true},
	}
	for _, tt := range tests {
		bucket, prefix, err := ParseS3URL(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseS3URL(%q) error = %v", tt.raw, err)
			continue
		}
		if bucket != tt.bucket || prefix != tt.prefix {
			t.Errorf("ParseS3URL(%q) = %q, %q", tt.raw, bucket, prefix)
		}
	}
}

func TestS3SinkUploadFileAndDir(t *testing.T) {
	fake := &fakeUploader{objects: map[string]string{}}
	sink := &S3Sink{bucket: "music", prefix: "lib", uploader: fake}

	dir := t.TempDir()
	file := filepath.Join(dir, "single.mp3")
	os.WriteFile(file, []byte("x"), 0644)
	album := filepath.Join(dir, "Album")
	os.MkdirAll(filepath.Join(album, "cd1"), 0755)
	os.WriteFile(filepath.Join(album, "cd1", "a.mp3"), []byte("a"), 0644)
	os.WriteFile(filepath.Join(album, "b.mp3"), []byte("b"), 0644)

	uris, err := sink.Upload(context.Background(), file)
	if err != nil {
		t.Fatalf("Upload file: %v", err)
	}
	if len(uris) != 1 || uris[0] != "s3://music/lib/single.mp3" {
		t.Errorf("unexpected uris %v", uris)
	}

	uris, err = sink.Upload(context.Background(), album)
	if err != nil {
		t.Fatalf("Upload dir: %v", err)
	}
	sort.Strings(uris)
	want := []string{"s3://music/lib/Album/b.mp3", "s3://music/lib/Album/cd1/a.mp3"}
	if len(uris) != 2 || uris[0] != want[0] || uris[1] != want[1] {
		t.Errorf("expected %v, got %v", want, uris)
	}
	if fake.objects["music/lib/Album/cd1/a.mp3"] != "a" {
		t.Errorf("unexpected stored objects %v", fake.objects)
	}
}
