package nexrad

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/radar-loop/internal/domain"
	"github.com/couchcryptid/radar-loop/internal/observability"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetrics())
}

func listingXML(keys ...string) string {
	body := `<?xml version="1.0" encoding="UTF-8"?><ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>unidata-nexrad-level3</Name><IsTruncated>false</IsTruncated>`
	for _, k := range keys {
		body += fmt.Sprintf("<Contents><Key>%s</Key><Size>9104</Size></Contents>", k)
	}
	return body + "</ListBucketResult>"
}

func TestClient_ListRecentKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "MOB_N0B_2024_04_26", r.URL.Query().Get("prefix"))
		// The bucket returns keys in lexicographic order; hand them over
		// shuffled to prove the client sorts.
		fmt.Fprint(w, listingXML(
			"MOB_N0B_2024_04_26_18_13_04",
			"MOB_N0B_2024_04_26_17_38_59",
			"MOB_N0B_2024_04_26_17_47_22",
			"MOB_N0B_2024_04_26_18_04_28",
			"MOB_N0B_2024_04_26_17_55_51",
			"MOB_N0B_2024_04_26_17_30_11",
		))
	}))
	defer srv.Close()

	keys, err := testClient(srv.URL).ListRecentKeys(context.Background(), "MOB_N0B", "2024_04_26", 5)
	require.NoError(t, err)

	assert.Equal(t, domain.Chronological{
		"MOB_N0B_2024_04_26_17_38_59",
		"MOB_N0B_2024_04_26_17_47_22",
		"MOB_N0B_2024_04_26_17_55_51",
		"MOB_N0B_2024_04_26_18_04_28",
		"MOB_N0B_2024_04_26_18_13_04",
	}, keys)
}

func TestClient_ListRecentKeys_UnderCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingXML("MOB_N0B_2024_04_26_17_30_11", "MOB_N0B_2024_04_26_17_38_59"))
	}))
	defer srv.Close()

	keys, err := testClient(srv.URL).ListRecentKeys(context.Background(), "MOB_N0B", "2024_04_26", 5)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestClient_ListRecentKeys_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingXML())
	}))
	defer srv.Close()

	keys, err := testClient(srv.URL).ListRecentKeys(context.Background(), "MOB_N0B", "2024_04_26", 5)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestClient_ListRecentKeys_Paginated(t *testing.T) {
	pages := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		if r.URL.Query().Get("marker") == "" {
			fmt.Fprint(w, `<?xml version="1.0"?><ListBucketResult><IsTruncated>true</IsTruncated><Contents><Key>MOB_N0B_2024_04_26_17_30_11</Key></Contents></ListBucketResult>`)
			return
		}
		assert.Equal(t, "MOB_N0B_2024_04_26_17_30_11", r.URL.Query().Get("marker"))
		fmt.Fprint(w, listingXML("MOB_N0B_2024_04_26_17_38_59"))
	}))
	defer srv.Close()

	keys, err := testClient(srv.URL).ListRecentKeys(context.Background(), "MOB_N0B", "2024_04_26", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Len(t, keys, 2)
}

func TestClient_ListRecentKeys_FiltersForeignKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingXML(
			"MOB_N0B_2024_04_26_17_30_11",
			"MOB_N0Q_2024_04_26_17_30_11", // different product slipped into the page
		))
	}))
	defer srv.Close()

	keys, err := testClient(srv.URL).ListRecentKeys(context.Background(), "MOB_N0B", "2024_04_26", 5)
	require.NoError(t, err)
	assert.Equal(t, domain.Chronological{"MOB_N0B_2024_04_26_17_30_11"}, keys)
}

func TestClient_ListRecentKeys_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListRecentKeys(context.Background(), "MOB_N0B", "2024_04_26", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/MOB_N0B_2024_04_26_18_13_04", r.URL.Path)
		w.Write([]byte("raw-bytes"))
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).Fetch(context.Background(), "MOB_N0B_2024_04_26_18_13_04")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw-bytes"), data)
}

func TestClient_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "NoSuchKey", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "MOB_N0B_2024_04_26_18_13_04")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestClient_FetchScan(t *testing.T) {
	payload := n0b().encode(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	scan, err := testClient(srv.URL).FetchScan(context.Background(), "MOB_N0B_2024_04_26_18_13_04")
	require.NoError(t, err)
	assert.Equal(t, domain.ScanKey("MOB_N0B_2024_04_26_18_13_04"), scan.Key)
	assert.Equal(t, int16(153), scan.ProductCode)
	assert.Len(t, scan.Field.Radials, 4)
}

func TestClient_FetchScan_DecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>certainly not radar data</html>"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchScan(context.Background(), "MOB_N0B_2024_04_26_18_13_04")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode MOB_N0B_2024_04_26_18_13_04")
}

func TestClient_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := testClient(srv.URL).Fetch(ctx, "MOB_N0B_2024_04_26_18_13_04")
	require.Error(t, err)
}
