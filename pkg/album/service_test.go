package album_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wedshare/album-backend/pkg/album"
	"github.com/wedshare/album-backend/pkg/album/metadata"
	memorystorage "github.com/wedshare/album-backend/pkg/album/storage/memory"
)

var keyPattern = regexp.MustCompile(`^wedding-uploads/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.jpg$`)

func setupTestService(t *testing.T, opts ...album.Option) (album.Service, *memorystorage.Backend, album.MetadataStore) {
	store := memorystorage.New()
	metadataStore := metadata.NewDocument(store, "")

	options := append([]album.Option{
		album.WithObjectStore(store),
		album.WithMetadataStore(metadataStore),
	}, opts...)

	svc, err := album.New(options...)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc, store, metadataStore
}

func TestServiceCreation(t *testing.T) {
	store := memorystorage.New()

	tests := []struct {
		name        string
		options     []album.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []album.Option{},
			expectError: true,
		},
		{
			name: "missing metadata store should fail",
			options: []album.Option{
				album.WithObjectStore(store),
			},
			expectError: true,
		},
		{
			name: "with object and metadata store should succeed",
			options: []album.Option{
				album.WithObjectStore(store),
				album.WithMetadataStore(metadata.NewMemory()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := album.New(tt.options...)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestIssueUploadURL(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	t.Run("ValidUpload", func(t *testing.T) {
		grant, err := svc.IssueUploadURL(ctx, album.IssueUploadURLRequest{
			Filename: "party.jpg",
			Filetype: "image/jpeg",
			Filesize: 1024,
		})
		require.NoError(t, err)
		assert.Regexp(t, keyPattern, grant.Key)
		assert.NotEmpty(t, grant.URL)
		assert.WithinDuration(t, time.Now().Add(album.UploadGrantTTL), grant.ExpiresAt, 5*time.Second)
	})

	t.Run("UppercaseExtensionIsLowered", func(t *testing.T) {
		grant, err := svc.IssueUploadURL(ctx, album.IssueUploadURLRequest{
			Filename: "PHOTO.JPG",
			Filetype: "image/jpeg",
			Filesize: 1024,
		})
		require.NoError(t, err)
		assert.Regexp(t, keyPattern, grant.Key)
	})

	t.Run("KeysNeverRepeat", func(t *testing.T) {
		req := album.IssueUploadURLRequest{Filename: "same.jpg", Filetype: "image/jpeg", Filesize: 1}
		first, err := svc.IssueUploadURL(ctx, req)
		require.NoError(t, err)
		second, err := svc.IssueUploadURL(ctx, req)
		require.NoError(t, err)
		assert.NotEqual(t, first.Key, second.Key)
	})

	t.Run("AllAllowedTypes", func(t *testing.T) {
		for _, filetype := range []string{"image/png", "image/heic", "video/mp4", "video/quicktime"} {
			grant, err := svc.IssueUploadURL(ctx, album.IssueUploadURLRequest{
				Filename: "clip.bin",
				Filetype: filetype,
				Filesize: 2048,
			})
			require.NoError(t, err, filetype)
			assert.NotEmpty(t, grant.URL)
		}
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		_, err := svc.IssueUploadURL(ctx, album.IssueUploadURLRequest{
			Filename: "doc.pdf",
			Filetype: "application/pdf",
			Filesize: 10,
		})
		assert.ErrorIs(t, err, album.ErrUnsupportedFileType)
	})

	t.Run("FileTooLarge", func(t *testing.T) {
		_, err := svc.IssueUploadURL(ctx, album.IssueUploadURLRequest{
			Filename: "huge.mp4",
			Filetype: "video/mp4",
			Filesize: album.MaxUploadSize + 1,
		})
		assert.ErrorIs(t, err, album.ErrFileTooLarge)
	})

	t.Run("ExactLimitIsAccepted", func(t *testing.T) {
		_, err := svc.IssueUploadURL(ctx, album.IssueUploadURLRequest{
			Filename: "big.mp4",
			Filetype: "video/mp4",
			Filesize: album.MaxUploadSize,
		})
		assert.NoError(t, err)
	})

	t.Run("TypeCheckedBeforeSize", func(t *testing.T) {
		_, err := svc.IssueUploadURL(ctx, album.IssueUploadURLRequest{
			Filename: "huge.pdf",
			Filetype: "application/pdf",
			Filesize: album.MaxUploadSize + 1,
		})
		assert.ErrorIs(t, err, album.ErrUnsupportedFileType)
	})
}

func seedObjects(store *memorystorage.Backend, n int, base time.Time) {
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("wedding-uploads/obj-%02d.jpg", i)
		store.SeedObject(key, []byte("data"), base.Add(time.Duration(i)*time.Minute), nil)
	}
}

func TestListMediaPagination(t *testing.T) {
	svc, store, _ := setupTestService(t)
	ctx := context.Background()
	seedObjects(store, 25, time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name        string
		page        int
		limit       int
		wantCount   int
		wantHasMore bool
	}{
		{"FirstPage", 1, 10, 10, true},
		{"LastPartialPage", 3, 10, 5, false},
		{"PastTheEnd", 4, 10, 0, false},
		{"Defaults", 0, 0, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ListMedia(ctx, album.ListMediaRequest{Page: tt.page, Limit: tt.limit})
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.wantCount)
			assert.Equal(t, 25, page.Total)
			assert.Equal(t, tt.wantHasMore, page.HasMore)
		})
	}

	t.Run("NewestFirst", func(t *testing.T) {
		page, err := svc.ListMedia(ctx, album.ListMediaRequest{})
		require.NoError(t, err)
		require.NotEmpty(t, page.Items)
		assert.Equal(t, "wedding-uploads/obj-24.jpg", page.Items[0].ID)
		for i := 1; i < len(page.Items); i++ {
			assert.False(t, page.Items[i].CreatedDate.After(page.Items[i-1].CreatedDate))
		}
	})
}

func TestListMediaDefaults(t *testing.T) {
	svc, store, _ := setupTestService(t)
	ctx := context.Background()

	uploaded := time.Date(2026, 6, 21, 9, 30, 0, 0, time.UTC)
	store.SeedObject("wedding-uploads/lonely.jpg", []byte("x"), uploaded, nil)

	page, err := svc.ListMedia(ctx, album.ListMediaRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	item := page.Items[0]
	assert.Equal(t, "wedding-uploads/lonely.jpg", item.ID)
	assert.Equal(t, "memory://wedding-uploads/lonely.jpg", item.URL)
	assert.Equal(t, album.MediaTypeImage, item.Type)
	assert.Equal(t, "", item.Title)
	assert.Equal(t, album.DefaultUploaderName, item.UploaderName)
	assert.True(t, item.CreatedDate.Equal(uploaded))
}

func TestListMediaJoinsMetadata(t *testing.T) {
	svc, store, _ := setupTestService(t)
	ctx := context.Background()

	store.SeedObject("wedding-uploads/cake.mp4", []byte("x"), time.Now(), nil)

	key, err := svc.SaveMediaMetadata(ctx, album.SaveMediaMetadataRequest{
		MediaURL:     "https://bucket.s3.us-east-1.amazonaws.com/wedding-uploads/cake.mp4",
		Title:        "Cutting the cake",
		MediaType:    "video",
		UploaderName: "Maya",
	})
	require.NoError(t, err)
	assert.Equal(t, "wedding-uploads/cake.mp4", key)

	page, err := svc.ListMedia(ctx, album.ListMediaRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Cutting the cake", page.Items[0].Title)
	assert.Equal(t, "Maya", page.Items[0].UploaderName)
	assert.Equal(t, album.MediaTypeVideo, page.Items[0].Type)
}

func TestListMediaRecordedDateWins(t *testing.T) {
	svc, store, metadataStore := setupTestService(t)
	ctx := context.Background()

	// Storage says "old" arrived last, but its recorded creation date is the
	// earliest. The final ordering must follow the recorded dates.
	store.SeedObject("wedding-uploads/old.jpg", []byte("x"), time.Date(2026, 6, 22, 12, 0, 0, 0, time.UTC), nil)
	store.SeedObject("wedding-uploads/new.jpg", []byte("x"), time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC), nil)

	recorded := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	err := metadataStore.Write(ctx, map[string]album.MetadataRecord{
		"wedding-uploads/old.jpg": {Title: "actually first", CreatedDate: &recorded},
	})
	require.NoError(t, err)

	page, err := svc.ListMedia(ctx, album.ListMediaRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "wedding-uploads/new.jpg", page.Items[0].ID)
	assert.Equal(t, "wedding-uploads/old.jpg", page.Items[1].ID)
	assert.True(t, page.Items[1].CreatedDate.Equal(recorded))
}

func TestListMediaAttachedMetadataFallback(t *testing.T) {
	svc, store, _ := setupTestService(t)
	ctx := context.Background()

	store.SeedObject("wedding-uploads/fete.jpg", []byte("x"), time.Now(), map[string]string{
		"title":         url.QueryEscape("Fête & friends"),
		"uploader-name": url.QueryEscape("Ana"),
	})

	page, err := svc.ListMedia(ctx, album.ListMediaRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Fête & friends", page.Items[0].Title)
	assert.Equal(t, "Ana", page.Items[0].UploaderName)
}

func TestListMediaDocumentWinsOverAttached(t *testing.T) {
	svc, store, metadataStore := setupTestService(t)
	ctx := context.Background()

	store.SeedObject("wedding-uploads/a.jpg", []byte("x"), time.Now(), map[string]string{
		"title": url.QueryEscape("attached title"),
	})
	err := metadataStore.Write(ctx, map[string]album.MetadataRecord{
		"wedding-uploads/a.jpg": {Title: "document title", UploaderName: "Sam"},
	})
	require.NoError(t, err)

	page, err := svc.ListMedia(ctx, album.ListMediaRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "document title", page.Items[0].Title)
}

// failingHeadStore breaks per-object metadata fetches while leaving the
// listing itself healthy.
type failingHeadStore struct {
	*memorystorage.Backend
}

func (s *failingHeadStore) GetObjectMeta(ctx context.Context, objectKey string) (*album.ObjectMeta, error) {
	return nil, errors.New("head unavailable")
}

func TestListMediaDegradesOnHeadFailure(t *testing.T) {
	store := memorystorage.New()
	svc, err := album.New(
		album.WithObjectStore(&failingHeadStore{store}),
		album.WithMetadataStore(metadata.NewMemory()),
	)
	require.NoError(t, err)

	store.SeedObject("wedding-uploads/b.jpg", []byte("x"), time.Now(), map[string]string{
		"title": "unreachable",
	})

	page, err := svc.ListMedia(context.Background(), album.ListMediaRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "", page.Items[0].Title)
	assert.Equal(t, album.DefaultUploaderName, page.Items[0].UploaderName)
}

// failingListStore breaks the bucket listing itself.
type failingListStore struct {
	*memorystorage.Backend
}

func (s *failingListStore) List(ctx context.Context, prefix string) ([]album.ObjectInfo, error) {
	return nil, errors.New("listing unavailable")
}

func TestListMediaFatalOnListingFailure(t *testing.T) {
	svc, err := album.New(
		album.WithObjectStore(&failingListStore{memorystorage.New()}),
		album.WithMetadataStore(metadata.NewMemory()),
	)
	require.NoError(t, err)

	_, err = svc.ListMedia(context.Background(), album.ListMediaRequest{})
	assert.ErrorIs(t, err, album.ErrListingFailed)
}

func TestSaveMediaMetadataInvalidReference(t *testing.T) {
	svc, _, metadataStore := setupTestService(t)
	ctx := context.Background()

	_, err := svc.SaveMediaMetadata(ctx, album.SaveMediaMetadataRequest{
		MediaURL: "https://example.com/somewhere/else.jpg",
		Title:    "lost",
	})
	assert.ErrorIs(t, err, album.ErrInvalidReference)

	// Nothing may be written for a rejected reference.
	entries, err := metadataStore.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveMediaMetadataPrefixWithoutKey(t *testing.T) {
	svc, _, _ := setupTestService(t)

	_, err := svc.SaveMediaMetadata(context.Background(), album.SaveMediaMetadataRequest{
		MediaURL: "https://bucket.s3.amazonaws.com/wedding-uploads",
	})
	assert.ErrorIs(t, err, album.ErrInvalidReference)
}
