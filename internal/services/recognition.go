package services

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// matchThreshold is the minimum similarity score accepted as a match.
const matchThreshold = 85

// FaceSearchAPI is the slice of the Rekognition client used for matching.
type FaceSearchAPI interface {
	SearchFacesByImage(ctx context.Context, params *rekognition.SearchFacesByImageInput, optFns ...func(*rekognition.Options)) (*rekognition.SearchFacesByImageOutput, error)
}

// FaceMatch is a resolved identity: the gallery face ID and the similarity
// score that matched it.
type FaceMatch struct {
	FaceID     string
	Similarity float64
}

// Resolver maps image bytes to an enrolled identity.
type Resolver interface {
	Resolve(ctx context.Context, imageBytes []byte) (*FaceMatch, error)
}

// RecognitionService resolves identities against the Rekognition
// collection. A nil match with a nil error means no candidate cleared the
// threshold; errors are transport failures for the caller to interpret.
type RecognitionService struct {
	client       FaceSearchAPI
	collectionID string
}

func NewRecognitionService(client FaceSearchAPI, collectionID string) *RecognitionService {
	return &RecognitionService{client: client, collectionID: collectionID}
}

// Resolve searches the collection for the best single candidate at or
// above the similarity threshold.
func (s *RecognitionService) Resolve(ctx context.Context, imageBytes []byte) (*FaceMatch, error) {
	out, err := s.client.SearchFacesByImage(ctx, &rekognition.SearchFacesByImageInput{
		CollectionId:       aws.String(s.collectionID),
		Image:              &types.Image{Bytes: imageBytes},
		MaxFaces:           aws.Int32(1),
		FaceMatchThreshold: aws.Float32(matchThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("search faces: %w", err)
	}
	if len(out.FaceMatches) == 0 {
		return nil, nil
	}

	match := out.FaceMatches[0]
	similarity := float64(aws.ToFloat32(match.Similarity))
	if similarity < matchThreshold {
		return nil, nil
	}

	return &FaceMatch{
		FaceID:     aws.ToString(match.Face.FaceId),
		Similarity: similarity,
	}, nil
}
