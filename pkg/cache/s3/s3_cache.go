package s3cache

import (
	"bytes"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/moonwalker/searchkit/pkg/cache"
)

const bucketRegion = "eu-central-1"

// s3cache keeps cache entries as objects in one bucket, for sharing
// resolved configs across instances. S3 has no per-object expiry, the
// ttl argument is left to a bucket lifecycle rule.
type s3cache struct {
	bucketName string

	s3     *s3.S3
	opened bool
}

func New(bucketName string) cache.Cache {
	return &s3cache{bucketName: bucketName}
}

func (c *s3cache) open() (err error) {
	if c.opened {
		return
	}

	c.s3 = s3.New(session.New())

	inp := &s3.CreateBucketInput{
		Bucket: aws.String(c.bucketName),
		CreateBucketConfiguration: &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(bucketRegion),
		},
	}

	_, err = c.s3.CreateBucket(inp)
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			switch aerr.Code() {
			case s3.ErrCodeBucketAlreadyOwnedByYou:
				err = nil
			}
		}
	}

	if err == nil {
		c.opened = true
	}

	return
}

func (c *s3cache) Get(key string) (val []byte, err error) {
	err = c.open()
	if err != nil {
		return
	}

	out, err := c.s3.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		// an absent object is a miss, not a failure
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, nil
		}
		return
	}
	defer out.Body.Close()

	val, err = io.ReadAll(out.Body)
	return
}

func (c *s3cache) Set(key string, val []byte, ttl int64) (err error) {
	err = c.open()
	if err != nil {
		return
	}

	_, err = c.s3.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
		Body:   aws.ReadSeekCloser(bytes.NewReader(val)),
	})

	return
}

func (c *s3cache) Delete(key string) (err error) {
	err = c.open()
	if err != nil {
		return
	}

	_, err = c.s3.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})

	return
}

func (c *s3cache) DeleteAll(prefix string) (err error) {
	err = c.open()
	if err != nil {
		return
	}

	inp := &s3.ListObjectsInput{
		Bucket: aws.String(c.bucketName),
		Prefix: aws.String(prefix),
	}

	listErr := c.s3.ListObjectsPages(inp, func(p *s3.ListObjectsOutput, last bool) bool {
		for _, obj := range p.Contents {
			_, err = c.s3.DeleteObject(&s3.DeleteObjectInput{
				Bucket: aws.String(c.bucketName),
				Key:    obj.Key,
			})
			if err != nil {
				return false
			}
		}
		return true
	})

	if err == nil {
		err = listErr
	}
	return
}
