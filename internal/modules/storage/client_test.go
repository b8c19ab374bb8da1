package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Put_Uploads_Object_And_Returns_Public_URL(t *testing.T) {
	// Arrange
	var gotMethod, gotAuth, gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer server.Close()

	client := NewClient(server.URL, "documents", "store-token")

	// Act
	object, err := client.Put(context.Background(), []byte("file-contents"), "application/pdf", "notes.pdf")

	// Assert
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "Bearer store-token", gotAuth)
	require.Equal(t, "application/pdf", gotContentType)
	require.Equal(t, []byte("file-contents"), gotBody)

	require.True(t, strings.HasPrefix(object.Key, "documents/"))
	require.True(t, strings.HasSuffix(object.Key, "-notes.pdf"))
	require.Equal(t, server.URL+"/"+object.Key, object.URL)
}

func Test_Put_Sanitizes_File_Names(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := NewClient(server.URL, "documents", "store-token")

	// Act
	object, err := client.Put(context.Background(), []byte("x"), "", "../weird name?.pdf")

	// Assert
	require.NoError(t, err)
	require.NotContains(t, object.Key, "..")
	require.NotContains(t, object.Key, " ")
	require.NotContains(t, object.Key, "?")
}

func Test_Put_Surfaces_Upload_Failure(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "documents", "store-token")

	// Act
	_, err := client.Put(context.Background(), []byte("x"), "", "notes.pdf")

	// Assert
	require.Error(t, err)
}

func Test_Delete_Treats_Missing_Object_As_Success(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "documents", "store-token")

	// Act
	err := client.Delete(context.Background(), "documents/abc-notes.pdf")

	// Assert
	require.NoError(t, err)
}

func Test_Delete_Surfaces_Unexpected_Status(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "documents", "store-token")

	// Act
	err := client.Delete(context.Background(), "documents/abc-notes.pdf")

	// Assert
	require.Error(t, err)
}
