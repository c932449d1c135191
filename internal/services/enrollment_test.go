package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rektypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/facegate/backend/internal/database"
	"github.com/facegate/backend/internal/models"
)

func enrollmentRequestBody(t *testing.T, name string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString([]byte("image-bytes")),
		"name":  name,
	})
	assert.NoError(t, err)
	return bytes.NewBuffer(body)
}

func indexOutput(faceID string) *rekognition.IndexFacesOutput {
	return &rekognition.IndexFacesOutput{
		FaceRecords: []rektypes.FaceRecord{
			{Face: &rektypes.Face{FaceId: aws.String(faceID)}},
		},
	}
}

func newEnrollmentService(t *testing.T, search *MockFaceSearch, index *MockFaceIndex, objects *MockObjectStorage, users *MockUserDirectory) *EnrollmentService {
	t.Helper()
	return NewEnrollmentService(NewImageIngestor(t.TempDir()), search, index, objects, users, "test-bucket", "test-collection")
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestEnrollmentService_CreateFirstAdmin(t *testing.T) {
	t.Run("successful bootstrap", func(t *testing.T) {
		search := &MockFaceSearch{}
		index := &MockFaceIndex{}
		objects := &MockObjectStorage{}
		users := &MockUserDirectory{}

		users.On("AdminExists", mock.Anything).Return(false, nil)
		users.On("ClaimAdminBootstrap", mock.Anything).Return(nil)
		objects.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return aws.ToString(in.Bucket) == "test-bucket" &&
				strings.HasPrefix(aws.ToString(in.Key), "admin_Jane_") &&
				aws.ToString(in.ContentType) == "image/jpeg"
		})).Return(&s3.PutObjectOutput{}, nil)
		index.On("IndexFaces", mock.Anything, mock.MatchedBy(func(in *rekognition.IndexFacesInput) bool {
			return aws.ToString(in.ExternalImageId) == "admin_Jane"
		})).Return(indexOutput("admin-face-1"), nil)
		users.On("PutUser", mock.Anything, mock.MatchedBy(func(u *models.UserRecord) bool {
			return u.FaceID == "admin-face-1" && u.IsAdmin &&
				u.AccountNumber == "" && u.AccountBalance == nil
		})).Return(nil)

		service := newEnrollmentService(t, search, index, objects, users)
		r := httptest.NewRequest("POST", "/api/create-first-admin", enrollmentRequestBody(t, "Jane"))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		service.CreateFirstAdmin(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decodeResponse(t, w)
		assert.Equal(t, true, response["success"])
		assert.Contains(t, response["message"], "Jane")
		users.AssertExpectations(t)
		index.AssertExpectations(t)
		objects.AssertExpectations(t)
	})

	t.Run("admin already exists", func(t *testing.T) {
		users := &MockUserDirectory{}
		users.On("AdminExists", mock.Anything).Return(true, nil)

		service := newEnrollmentService(t, &MockFaceSearch{}, &MockFaceIndex{}, &MockObjectStorage{}, users)
		r := httptest.NewRequest("POST", "/api/create-first-admin", enrollmentRequestBody(t, "Jane"))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		service.CreateFirstAdmin(w, r)

		response := decodeResponse(t, w)
		assert.Equal(t, false, response["success"])
		assert.Equal(t, "Admin already exists", response["message"])
		users.AssertNotCalled(t, "PutUser", mock.Anything, mock.Anything)
	})

	t.Run("bootstrap race loser is rejected", func(t *testing.T) {
		users := &MockUserDirectory{}
		users.On("AdminExists", mock.Anything).Return(false, nil)
		users.On("ClaimAdminBootstrap", mock.Anything).Return(database.ErrAdminBootstrapClaimed)

		service := newEnrollmentService(t, &MockFaceSearch{}, &MockFaceIndex{}, &MockObjectStorage{}, users)
		r := httptest.NewRequest("POST", "/api/create-first-admin", enrollmentRequestBody(t, "Jane"))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		service.CreateFirstAdmin(w, r)

		response := decodeResponse(t, w)
		assert.Equal(t, false, response["success"])
		assert.Equal(t, "Admin already exists", response["message"])
	})

	t.Run("no face detected releases the bootstrap claim", func(t *testing.T) {
		index := &MockFaceIndex{}
		objects := &MockObjectStorage{}
		users := &MockUserDirectory{}

		users.On("AdminExists", mock.Anything).Return(false, nil)
		users.On("ClaimAdminBootstrap", mock.Anything).Return(nil)
		users.On("ReleaseAdminBootstrap", mock.Anything).Return(nil)
		objects.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil)
		index.On("IndexFaces", mock.Anything, mock.Anything).Return(&rekognition.IndexFacesOutput{}, nil)

		service := newEnrollmentService(t, &MockFaceSearch{}, index, objects, users)
		r := httptest.NewRequest("POST", "/api/create-first-admin", enrollmentRequestBody(t, "Jane"))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		service.CreateFirstAdmin(w, r)

		response := decodeResponse(t, w)
		assert.Equal(t, false, response["success"])
		assert.Equal(t, "No face detected", response["message"])
		users.AssertCalled(t, "ReleaseAdminBootstrap", mock.Anything)
		users.AssertNotCalled(t, "PutUser", mock.Anything, mock.Anything)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		users := &MockUserDirectory{}
		users.On("AdminExists", mock.Anything).Return(false, nil)

		service := newEnrollmentService(t, &MockFaceSearch{}, &MockFaceIndex{}, &MockObjectStorage{}, users)
		r := httptest.NewRequest("POST", "/api/create-first-admin", enrollmentRequestBody(t, ""))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		service.CreateFirstAdmin(w, r)

		response := decodeResponse(t, w)
		assert.Equal(t, false, response["success"])
		users.AssertNotCalled(t, "ClaimAdminBootstrap", mock.Anything)
	})
}

func TestEnrollmentService_AddUser(t *testing.T) {
	t.Run("successful enrollment sets account defaults", func(t *testing.T) {
		search := &MockFaceSearch{}
		index := &MockFaceIndex{}
		objects := &MockObjectStorage{}
		users := &MockUserDirectory{}

		search.On("SearchFacesByImage", mock.Anything, mock.Anything).
			Return(&rekognition.SearchFacesByImageOutput{}, nil)
		objects.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return strings.HasPrefix(aws.ToString(in.Key), "user_Alice_")
		})).Return(&s3.PutObjectOutput{}, nil)
		index.On("IndexFaces", mock.Anything, mock.MatchedBy(func(in *rekognition.IndexFacesInput) bool {
			return aws.ToString(in.ExternalImageId) == "user_Alice"
		})).Return(indexOutput("face-alice"), nil)
		users.On("PutUser", mock.Anything, mock.MatchedBy(func(u *models.UserRecord) bool {
			return u.FaceID == "face-alice" && !u.IsAdmin &&
				len(u.AccountNumber) == 8 &&
				u.AccountNumber == strings.ToUpper(u.AccountNumber) &&
				u.AccountBalance != nil && u.AccountBalance.String() == "10000.00"
		})).Return(nil)

		service := newEnrollmentService(t, search, index, objects, users)
		r := httptest.NewRequest("POST", "/api/add-user", enrollmentRequestBody(t, "Alice"))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		service.AddUser(w, r)

		response := decodeResponse(t, w)
		assert.Equal(t, true, response["success"])
		assert.Equal(t, "User Alice added successfully", response["message"])
		users.AssertExpectations(t)
	})

	t.Run("duplicate face is rejected", func(t *testing.T) {
		search := &MockFaceSearch{}
		users := &MockUserDirectory{}

		search.On("SearchFacesByImage", mock.Anything, mock.Anything).
			Return(searchOutput("face-existing", 97), nil)

		service := newEnrollmentService(t, search, &MockFaceIndex{}, &MockObjectStorage{}, users)
		r := httptest.NewRequest("POST", "/api/add-user", enrollmentRequestBody(t, "Alice"))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		service.AddUser(w, r)

		response := decodeResponse(t, w)
		assert.Equal(t, false, response["success"])
		assert.Equal(t, "User already exists", response["message"])
		users.AssertNotCalled(t, "PutUser", mock.Anything, mock.Anything)
	})

	t.Run("failed duplicate check still enrolls", func(t *testing.T) {
		search := &MockFaceSearch{}
		index := &MockFaceIndex{}
		objects := &MockObjectStorage{}
		users := &MockUserDirectory{}

		search.On("SearchFacesByImage", mock.Anything, mock.Anything).
			Return(nil, errors.New("rekognition unavailable"))
		objects.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil)
		index.On("IndexFaces", mock.Anything, mock.Anything).Return(indexOutput("face-bob"), nil)
		users.On("PutUser", mock.Anything, mock.Anything).Return(nil)

		service := newEnrollmentService(t, search, index, objects, users)
		r := httptest.NewRequest("POST", "/api/add-user", enrollmentRequestBody(t, "Bob"))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		service.AddUser(w, r)

		response := decodeResponse(t, w)
		assert.Equal(t, true, response["success"])
		users.AssertCalled(t, "PutUser", mock.Anything, mock.Anything)
	})

	t.Run("no face detected", func(t *testing.T) {
		search := &MockFaceSearch{}
		index := &MockFaceIndex{}
		objects := &MockObjectStorage{}
		users := &MockUserDirectory{}

		search.On("SearchFacesByImage", mock.Anything, mock.Anything).
			Return(&rekognition.SearchFacesByImageOutput{}, nil)
		objects.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil)
		index.On("IndexFaces", mock.Anything, mock.Anything).Return(&rekognition.IndexFacesOutput{}, nil)

		service := newEnrollmentService(t, search, index, objects, users)
		r := httptest.NewRequest("POST", "/api/add-user", enrollmentRequestBody(t, "Alice"))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		service.AddUser(w, r)

		response := decodeResponse(t, w)
		assert.Equal(t, false, response["success"])
		assert.Equal(t, "No face detected", response["message"])
		users.AssertNotCalled(t, "PutUser", mock.Anything, mock.Anything)
	})
}
