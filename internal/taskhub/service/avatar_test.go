package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakePresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	return &v4.PresignedHTTPRequest{
		URL:    "https://s3.test/avatars/" + *in.Key + "?X-Amz-Signature=abc",
		Method: "PUT",
	}, nil
}

func TestAvatarService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.seedUser(t, "ana", true)

	t.Run("disabled without storage", func(t *testing.T) {
		var nilSvc *AvatarService
		require.False(t, nilSvc.Enabled())

		svc := &AvatarService{Store: e.store}
		_, err := svc.PresignUpload(ctx, u.ID, "image/png")
		require.ErrorIs(t, err, ErrStorageDisabled)
	})

	presigner := &fakePresigner{}
	svc := &AvatarService{Store: e.store, Presigner: presigner, Bucket: "taskhub"}

	t.Run("rejects other content types", func(t *testing.T) {
		_, err := svc.PresignUpload(ctx, u.ID, "application/pdf")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("presigns and records the key", func(t *testing.T) {
		up, err := svc.PresignUpload(ctx, u.ID, "image/png")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(up.Key, "avatars/"+u.ID+"/"))
		require.True(t, strings.HasSuffix(up.Key, ".png"))
		require.Contains(t, up.UploadURL, "X-Amz-Signature")
		require.False(t, up.ExpiresAt.IsZero())

		require.Equal(t, "taskhub", *presigner.in.Bucket)
		require.Equal(t, "image/png", *presigner.in.ContentType)

		got, err := e.store.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, up.Key, got.ProfilePicture)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.PresignUpload(ctx, "missing", "image/jpeg")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("presign failure leaves the profile alone", func(t *testing.T) {
		before, err := e.store.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)

		failing := &AvatarService{Store: e.store, Presigner: &fakePresigner{err: errors.New("no credentials")}, Bucket: "taskhub"}
		_, err = failing.PresignUpload(ctx, u.ID, "image/webp")
		require.Error(t, err)

		after, err := e.store.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, before.ProfilePicture, after.ProfilePicture)
	})
}
