package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/synchthia/kaizen/collector"
	"github.com/synchthia/kaizen/config"
	"github.com/synchthia/kaizen/models"
	"go.uber.org/zap"
)

type objectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Client stores collections in an S3-compatible bucket addressed by the
// sha256 of each blob. Directories are stored as JSON manifests of their
// children and addressed the same way.
type R2Client struct {
	api      objectAPI
	cacheSvc *CacheService
	log      *zap.Logger

	BucketName string
	Namespace  string
}

// Manifest describes one directory. Links are sorted by name.
type Manifest struct {
	Links []Link `json:"links"`
}

type Link struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Size uint64 `json:"size"`
	Dir  bool   `json:"dir,omitempty"`
}

func InitR2(ctx context.Context, cfg config.R2Config, cacheSvc *CacheService, log *zap.Logger) (*R2Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}

	endpoint := cfg.ResolvedEndpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	log.Debug("using r2 storage", zap.String("endpoint", endpoint), zap.String("bucket", cfg.BucketName))

	return newR2Client(client, cfg.BucketName, cfg.Namespace, cacheSvc, log), nil
}

func newR2Client(api objectAPI, bucket, namespace string, cacheSvc *CacheService, log *zap.Logger) *R2Client {
	return &R2Client{
		api:        api,
		cacheSvc:   cacheSvc,
		log:        log,
		BucketName: bucket,
		Namespace:  strings.Trim(namespace, "/"),
	}
}

// Add uploads every blob of the collection. A single file yields one object
// named by its hash. A directory yields one object per file followed by one
// per directory, deepest first, so the prefix root comes last.
func (r2 *R2Client) Add(ctx context.Context, col *collector.Collection) (objs []models.AddedObject, err error) {
	defer func() {
		if saveErr := r2.cacheSvc.Save(); saveErr != nil && err == nil {
			err = saveErr
		}
	}()

	if !col.IsDir {
		hash, err := r2.put(ctx, col.Content)
		if err != nil {
			return nil, err
		}
		return []models.AddedObject{{Path: hash, Hash: hash, Size: uint64(len(col.Content))}}, nil
	}

	dirs := map[string]map[string]*Link{col.Prefix: {}}
	objs = make([]models.AddedObject, 0, len(col.Entries)+1)

	for _, e := range col.Entries {
		hash, err := r2.put(ctx, e.Content)
		if err != nil {
			return nil, err
		}
		size := uint64(len(e.Content))
		objs = append(objs, models.AddedObject{Path: e.VirtualPath, Hash: hash, Size: size})

		dir, name := path.Split(e.VirtualPath)
		dir = strings.TrimSuffix(dir, "/")
		link(dirs, dir)
		dirs[dir][name] = &Link{Name: name, Hash: hash, Size: size}
	}

	for _, dir := range deepestFirst(dirs) {
		manifest := Manifest{Links: make([]Link, 0, len(dirs[dir]))}
		var size uint64
		for _, l := range dirs[dir] {
			manifest.Links = append(manifest.Links, *l)
			size += l.Size
		}
		sort.Slice(manifest.Links, func(i, j int) bool {
			return manifest.Links[i].Name < manifest.Links[j].Name
		})

		b, err := json.Marshal(manifest)
		if err != nil {
			return nil, err
		}
		hash, err := r2.put(ctx, b)
		if err != nil {
			return nil, err
		}
		size += uint64(len(b))
		objs = append(objs, models.AddedObject{Path: dir, Hash: hash, Size: size})

		if parent, name := path.Split(dir); parent != "" {
			l := dirs[strings.TrimSuffix(parent, "/")][name]
			l.Hash = hash
			l.Size = size
		}
	}

	return objs, nil
}

// link registers dir and its ancestors, each as a child of the next.
func link(dirs map[string]map[string]*Link, dir string) {
	if _, ok := dirs[dir]; ok {
		return
	}
	dirs[dir] = map[string]*Link{}

	parent, name := path.Split(dir)
	parent = strings.TrimSuffix(parent, "/")
	if parent == "" {
		return
	}
	link(dirs, parent)
	dirs[parent][name] = &Link{Name: name, Dir: true}
}

func deepestFirst(dirs map[string]map[string]*Link) []string {
	out := make([]string, 0, len(dirs))
	for d := range dirs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := strings.Count(out[i], "/"), strings.Count(out[j], "/")
		if di != dj {
			return di > dj
		}
		return out[i] < out[j]
	})
	return out
}

func (r2 *R2Client) key(hash string) string {
	return path.Join(r2.Namespace, "blobs", hash)
}

// put stores content under its digest unless it is already known.
func (r2 *R2Client) put(ctx context.Context, content []byte) (string, error) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	key := r2.key(hash)

	if r2.cacheSvc.Has(hash) {
		r2.log.Debug("skipped cached blob", zap.String("key", key))
		return hash, nil
	}

	_, err := r2.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &r2.BucketName,
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		r2.log.Debug("skipped existing blob", zap.String("key", key))
	case isNotFound(err):
		if _, err := r2.api.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        &r2.BucketName,
			Key:           aws.String(key),
			Body:          bytes.NewReader(content),
			ContentLength: aws.Int64(int64(len(content))),
			ContentType:   aws.String(contentTypeFile),
		}); err != nil {
			return "", err
		}
		r2.log.Debug("uploaded blob", zap.String("key", key), zap.Int("size", len(content)))
	default:
		return "", err
	}

	r2.cacheSvc.Put(hash, &CachedBlob{Key: key, Size: uint64(len(content))})
	return hash, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
