package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"path"
	"strconv"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/synchthia/kaizen/collector"
	"github.com/synchthia/kaizen/models"
	"go.uber.org/zap"
)

const (
	contentTypeDirectory = "application/x-directory"
	contentTypeFile      = "application/octet-stream"
)

// IPFSClient submits collections to an IPFS node over its HTTP API.
type IPFSClient struct {
	shell *shell.Shell
	log   *zap.Logger
}

func NewIPFSClient(apiURL string, log *zap.Logger) *IPFSClient {
	return &IPFSClient{
		shell: shell.NewShell(apiURL),
		log:   log,
	}
}

type addedObject struct {
	Name string
	Hash string
	Size string
}

// Add sends the whole collection as a single add request. The node answers
// with one object per file and per directory, root directory last.
func (c *IPFSClient) Add(ctx context.Context, col *collector.Collection) ([]models.AddedObject, error) {
	body, contentType, err := encodeAddBody(col)
	if err != nil {
		return nil, err
	}

	c.log.Debug("ipfs add", zap.String("root", col.Root), zap.Int("entries", col.Len()), zap.Int("body", body.Len()))

	resp, err := c.shell.Request("add").
		Option("progress", false).
		Option("pin", true).
		Header("Content-Type", contentType).
		Body(body).
		Send(ctx)
	if err != nil {
		return nil, fmt.Errorf("ipfs add: %w", err)
	}
	defer resp.Close()

	if resp.Error != nil {
		return nil, fmt.Errorf("ipfs add: %w", resp.Error)
	}

	return decodeAdded(resp.Output)
}

// encodeAddBody lays out the multipart body the add endpoint expects. Each
// directory is declared before its first child and entries keep their
// collected order.
func encodeAddBody(col *collector.Collection) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if !col.IsDir {
		if err := writePart(w, "", contentTypeFile, col.Content); err != nil {
			return nil, "", err
		}
		return body, w.FormDataContentType(), w.Close()
	}

	declared := map[string]bool{}
	var declare func(dir string) error
	declare = func(dir string) error {
		if dir == "." || dir == "" || declared[dir] {
			return nil
		}
		if err := declare(path.Dir(dir)); err != nil {
			return err
		}
		declared[dir] = true
		return writePart(w, dir, contentTypeDirectory, nil)
	}

	if err := declare(col.Prefix); err != nil {
		return nil, "", err
	}
	for _, e := range col.Entries {
		if err := declare(path.Dir(e.VirtualPath)); err != nil {
			return nil, "", err
		}
		if err := writePart(w, e.VirtualPath, contentTypeFile, e.Content); err != nil {
			return nil, "", err
		}
	}

	return body, w.FormDataContentType(), w.Close()
}

func writePart(w *multipart.Writer, name, contentType string, content []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, url.QueryEscape(name)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(content)
	return err
}

func decodeAdded(r io.Reader) ([]models.AddedObject, error) {
	objs := []models.AddedObject{}
	dec := json.NewDecoder(r)
	for {
		var out addedObject
		if err := dec.Decode(&out); err != nil {
			if errors.Is(err, io.EOF) {
				return objs, nil
			}
			return nil, fmt.Errorf("decode ipfs add response: %w", err)
		}
		if out.Hash == "" {
			continue
		}

		var size uint64
		if out.Size != "" {
			n, err := strconv.ParseUint(out.Size, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("decode ipfs add response: size %q: %w", out.Size, err)
			}
			size = n
		}

		objs = append(objs, models.AddedObject{Path: out.Name, Hash: out.Hash, Size: size})
	}
}
