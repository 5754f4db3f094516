package knowledge

import (
	"context"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

func fileOpener(path string) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open knowledge file", goerr.V("path", path))
		}
		return f, nil
	}
}

func gcsOpener(client *storage.Client, bucket, object string) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open knowledge object",
				goerr.V("bucket", bucket), goerr.V("object", object))
		}
		return r, nil
	}
}

// lazyGCSOpener creates a storage client per load using application default
// credentials. The client is closed together with the reader.
func lazyGCSOpener(location string) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		bucket, object, _ := splitGCS(location)

		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage client")
		}

		r, err := gcsOpener(client, bucket, object)(ctx)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &clientReader{ReadCloser: r, client: client}, nil
	}
}

type clientReader struct {
	io.ReadCloser
	client *storage.Client
}

func (r *clientReader) Close() error {
	readErr := r.ReadCloser.Close()
	clientErr := r.client.Close()
	if readErr != nil {
		return readErr
	}
	return clientErr
}
