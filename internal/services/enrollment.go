package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rektypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/facegate/backend/internal/database"
	"github.com/facegate/backend/internal/models"
)

// defaultBalance is the opening balance for every regular user.
const defaultBalance = "10000.00"

// FaceIndexAPI is the slice of the Rekognition client used for enrollment.
type FaceIndexAPI interface {
	IndexFaces(ctx context.Context, params *rekognition.IndexFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.IndexFacesOutput, error)
}

// ObjectStorageAPI is the slice of the S3 client used for photo uploads.
type ObjectStorageAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// UserDirectory is the user-record store consumed by the services.
// *database.UserStore satisfies it.
type UserDirectory interface {
	GetUser(ctx context.Context, faceID string) (*models.UserRecord, error)
	PutUser(ctx context.Context, user *models.UserRecord) error
	AdminExists(ctx context.Context) (bool, error)
	ClaimAdminBootstrap(ctx context.Context) error
	ReleaseAdminBootstrap(ctx context.Context) error
	ListUsers(ctx context.Context) ([]models.UserRecord, error)
}

// EnrollmentService registers faces: the bootstrap admin and, behind an
// admin session, regular users.
type EnrollmentService struct {
	ingestor     *ImageIngestor
	search       FaceSearchAPI
	index        FaceIndexAPI
	objects      ObjectStorageAPI
	users        UserDirectory
	bucket       string
	collectionID string
	validator    *ValidationHelper
}

func NewEnrollmentService(ingestor *ImageIngestor, search FaceSearchAPI, index FaceIndexAPI, objects ObjectStorageAPI, users UserDirectory, bucket, collectionID string) *EnrollmentService {
	return &EnrollmentService{
		ingestor:     ingestor,
		search:       search,
		index:        index,
		objects:      objects,
		users:        users,
		bucket:       bucket,
		collectionID: collectionID,
		validator:    NewValidationHelper(),
	}
}

type enrollmentRequest struct {
	Name string `validate:"required,min=2,max=64"`
}

// CreateFirstAdmin handles POST /api/create-first-admin. It is only
// permitted while no admin record exists; the bootstrap marker item makes
// the check-then-create sequence single-shot under concurrency.
func (s *EnrollmentService) CreateFirstAdmin(w http.ResponseWriter, r *http.Request) {
	log.Printf("[ENROLL] First-admin creation attempt from IP: %s", r.RemoteAddr)
	ctx := r.Context()

	exists, err := s.users.AdminExists(ctx)
	if err != nil {
		log.Printf("[ENROLL] Admin existence check failed: %v", err)
		respondError(w, err)
		return
	}
	if exists {
		respondFailure(w, "Admin already exists")
		return
	}

	payload, err := s.ingestor.ExtractPayload(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.validator.ValidateStruct(&enrollmentRequest{Name: payload.Name}); err != nil {
		respondFailure(w, "A valid name is required")
		return
	}

	if err := s.users.ClaimAdminBootstrap(ctx); err != nil {
		if errors.Is(err, database.ErrAdminBootstrapClaimed) {
			respondFailure(w, "Admin already exists")
			return
		}
		log.Printf("[ENROLL] Bootstrap claim failed: %v", err)
		respondError(w, err)
		return
	}

	faceID, err := s.enroll(ctx, payload.Bytes, payload.Name, "admin", true)
	if err != nil {
		if releaseErr := s.users.ReleaseAdminBootstrap(ctx); releaseErr != nil {
			log.Printf("[ENROLL] Failed to release bootstrap claim: %v", releaseErr)
		}
		if errors.Is(err, ErrNoFaceDetected) {
			respondFailure(w, "No face detected")
			return
		}
		log.Printf("[ENROLL] First-admin enrollment failed: %v", err)
		respondError(w, err)
		return
	}

	log.Printf("[ENROLL] First admin %q created with face ID %s", payload.Name, faceID)
	respondJSON(w, map[string]any{
		"success": true,
		"message": fmt.Sprintf("First admin %s created successfully", payload.Name),
	})
}

// AddUser handles POST /api/add-user. The admin session requirement is
// enforced by the router middleware.
func (s *EnrollmentService) AddUser(w http.ResponseWriter, r *http.Request) {
	log.Printf("[ENROLL] Add-user attempt from IP: %s", r.RemoteAddr)
	ctx := r.Context()

	payload, err := s.ingestor.ExtractPayload(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.validator.ValidateStruct(&enrollmentRequest{Name: payload.Name}); err != nil {
		respondFailure(w, "A valid name is required")
		return
	}

	// A failed duplicate check does not block enrollment; the face will
	// still index, it just loses duplicate protection for this request.
	enrolled, err := s.faceAlreadyEnrolled(ctx, payload.Bytes)
	if err != nil {
		log.Printf("[ENROLL] Duplicate check failed, proceeding without it: %v", err)
	} else if enrolled {
		respondFailure(w, "User already exists")
		return
	}

	faceID, err := s.enroll(ctx, payload.Bytes, payload.Name, "user", false)
	if err != nil {
		if errors.Is(err, ErrNoFaceDetected) {
			respondFailure(w, "No face detected")
			return
		}
		log.Printf("[ENROLL] User enrollment failed: %v", err)
		respondError(w, err)
		return
	}

	log.Printf("[ENROLL] User %q enrolled with face ID %s", payload.Name, faceID)
	respondJSON(w, map[string]any{
		"success": true,
		"message": fmt.Sprintf("User %s added successfully", payload.Name),
	})
}

// faceAlreadyEnrolled reports whether the collection already holds a match
// for the submitted face.
func (s *EnrollmentService) faceAlreadyEnrolled(ctx context.Context, image []byte) (bool, error) {
	out, err := s.search.SearchFacesByImage(ctx, &rekognition.SearchFacesByImageInput{
		CollectionId:       aws.String(s.collectionID),
		Image:              &rektypes.Image{Bytes: image},
		MaxFaces:           aws.Int32(1),
		FaceMatchThreshold: aws.Float32(matchThreshold),
	})
	if err != nil {
		return false, fmt.Errorf("duplicate search: %w", err)
	}
	return len(out.FaceMatches) > 0, nil
}

// enroll uploads the photo, indexes the face, and persists the record.
// The S3 object is not rolled back when indexing finds no face; stale
// photos are harmless and periodically reconciled out of band.
func (s *EnrollmentService) enroll(ctx context.Context, image []byte, name, role string, admin bool) (string, error) {
	now := time.Now()

	s3Key := fmt.Sprintf("%s_%s_%s.jpg", role, name, now.Format("20060102_150405"))
	_, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s3Key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("upload enrollment photo: %w", err)
	}

	out, err := s.index.IndexFaces(ctx, &rekognition.IndexFacesInput{
		CollectionId:    aws.String(s.collectionID),
		Image:           &rektypes.Image{Bytes: image},
		ExternalImageId: aws.String(fmt.Sprintf("%s_%s", role, name)),
		MaxFaces:        aws.Int32(1),
		QualityFilter:   rektypes.QualityFilterAuto,
	})
	if err != nil {
		return "", fmt.Errorf("index face: %w", err)
	}
	if len(out.FaceRecords) == 0 {
		return "", ErrNoFaceDetected
	}

	faceID := aws.ToString(out.FaceRecords[0].Face.FaceId)
	record := &models.UserRecord{
		FaceID:    faceID,
		Name:      name,
		IsAdmin:   admin,
		CreatedAt: now.Format(time.RFC3339),
		S3Key:     s3Key,
	}
	if !admin {
		balance, err := models.NewBalance(defaultBalance)
		if err != nil {
			return "", err
		}
		record.AccountBalance = balance
		record.AccountNumber = newAccountNumber()
	}

	if err := s.users.PutUser(ctx, record); err != nil {
		return "", err
	}
	return faceID, nil
}

// newAccountNumber mints an 8-character opaque account token.
func newAccountNumber() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
