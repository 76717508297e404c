package model

import "math"

// Bucket names one of the fixed problem-difficulty ranges.
type Bucket string

// Rating buckets in canonical order.
const (
	BucketUpTo800   Bucket = "<=800"
	BucketUpTo1200  Bucket = "<=1200"
	BucketUpTo1600  Bucket = "<=1600"
	BucketUpTo2000  Bucket = "<=2000"
	BucketUpTo2400  Bucket = "<=2400"
	BucketUpTo3000  Bucket = "<=3000"
	BucketAbove3000 Bucket = ">3000"
)

// bucketBound is an inclusive upper bound; the last bucket is open-ended.
type bucketBound struct {
	bucket Bucket
	upper  int
}

var bucketBounds = []bucketBound{
	{BucketUpTo800, 800},
	{BucketUpTo1200, 1200},
	{BucketUpTo1600, 1600},
	{BucketUpTo2000, 2000},
	{BucketUpTo2400, 2400},
	{BucketUpTo3000, 3000},
	{BucketAbove3000, math.MaxInt},
}

// Buckets returns the seven buckets in canonical order.
func Buckets() []Bucket {
	out := make([]Bucket, len(bucketBounds))
	for i, b := range bucketBounds {
		out[i] = b.bucket
	}
	return out
}

// BucketFor returns the bucket a positive problem rating falls into.
func BucketFor(rating int) Bucket {
	for _, b := range bucketBounds {
		if rating <= b.upper {
			return b.bucket
		}
	}
	return BucketAbove3000
}
