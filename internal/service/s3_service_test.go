package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Service_Upload(t *testing.T) {
	putter := &fakePutter{}
	svc := &S3Service{client: putter, bucket: "quotes", region: "eu-central-1"}

	url, err := svc.Upload(context.Background(), QuotationKey("2026-123"), []byte("%PDF"), "application/pdf")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://quotes.s3.eu-central-1.amazonaws.com/quotations/2026/Quotation_2026-123.pdf" {
		t.Errorf("unexpected url %q", url)
	}
	if aws.ToString(putter.input.Bucket) != "quotes" || aws.ToString(putter.input.ContentType) != "application/pdf" {
		t.Errorf("unexpected input: %+v", putter.input)
	}
	if string(putter.body) != "%PDF" {
		t.Errorf("unexpected body %q", putter.body)
	}
}

func TestS3Service_UploadError(t *testing.T) {
	svc := &S3Service{client: &fakePutter{err: errors.New("denied")}, bucket: "quotes"}
	if _, err := svc.Upload(context.Background(), "k", nil, "application/pdf"); err == nil {
		t.Fatal("expected error")
	}
}

func TestS3Service_CustomEndpointURL(t *testing.T) {
	svc := &S3Service{bucket: "quotes", endpoint: "http://minio:9000/"}
	if got := svc.GetObjectURL("a/b.pdf"); got != "http://minio:9000/quotes/a/b.pdf" {
		t.Errorf("unexpected url %q", got)
	}
}
