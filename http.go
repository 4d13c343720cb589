package main

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	globalTimeout int
)

func sendRequest(method, url string, queryParams url.Values, headers map[string]string, body io.Reader, timeout ...int) (*http.Response, error) {
	// Get timeout value, if passed, or use environment variable
	t := globalTimeout
	if len(timeout) > 0 {
		t = timeout[0]
	}

	// Create new HTTP client with timeout
	client := http.Client{
		Timeout: time.Duration(time.Duration(t) * time.Second),
	}

	// Create a new request
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}

	// Set query parameters if provided
	if queryParams != nil {
		req.URL.RawQuery = queryParams.Encode()
	}

	// Set headers if provided
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	// Initiate request
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	// Initialize re-used variables
	var respBody []byte
	var err error

	// Read the body and set up a defer to close the body to avoid
	// leaking resources.
	defer resp.Body.Close()

	// Check for gzipped "Content-Encoding" header
	if resp.Header.Get("Content-Encoding") == "gzip" {
		// Decompress response body
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("error creating gzip reader: %s", err)
		}
		defer gzipReader.Close()

		// Read decompressed content
		respBody, err = io.ReadAll(gzipReader)
		if err != nil {
			return nil, fmt.Errorf("error reading decompressed data: %s", err)
		}
	} else {
		// Assume decompressed data
		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %s", err)
		}
	}
	return respBody, nil
}
