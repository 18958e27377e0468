// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"foia-stream/internal/testutil"
)

func TestHasPDFHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"standard header", []byte("%PDF-1.7\n"), true},
		{"header after junk", append([]byte("\xef\xbb\xbfsome junk "), []byte("%PDF-1.4")...), true},
		{"header beyond window", []byte(strings.Repeat("x", 2048) + "%PDF-1.4"), false},
		{"no header", []byte("plain text file"), false},
		{"empty", nil, false},
		{"truncated signature", []byte("%PDF"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasPDFHeader(tt.data); got != tt.want {
				t.Errorf("hasPDFHeader() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadInfo_SinglePage(t *testing.T) {
	info, err := ReadInfo(testutil.TextPDF("hello"))
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}
	if info.PageCount != 1 {
		t.Errorf("expected 1 page, got %d", info.PageCount)
	}
	if len(info.Pages) != 1 {
		t.Fatalf("expected 1 page dim, got %d", len(info.Pages))
	}
	if info.Pages[0].Width != 612 || info.Pages[0].Height != 792 {
		t.Errorf("expected 612x792, got %gx%g", info.Pages[0].Width, info.Pages[0].Height)
	}
}

func TestReadInfo_MultiPage(t *testing.T) {
	info, err := ReadInfo(testutil.TextPDF("one", "two", "three"))
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}
	if info.PageCount != 3 {
		t.Errorf("expected 3 pages, got %d", info.PageCount)
	}
	if len(info.Pages) != 3 {
		t.Errorf("expected 3 page dims, got %d", len(info.Pages))
	}
}

func TestReadInfo_CustomPageSize(t *testing.T) {
	a4 := testutil.PageSpec{Width: 595, Height: 842, Text: "a4 page"}
	info, err := ReadInfo(testutil.PDF(a4))
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}
	if info.Pages[0].Width != 595 || info.Pages[0].Height != 842 {
		t.Errorf("expected 595x842, got %gx%g", info.Pages[0].Width, info.Pages[0].Height)
	}
}

func TestReadInfo_RejectsEncrypted(t *testing.T) {
	// Owner password only: the file opens without a password but keeps
	// its /Encrypt dictionary, which is the case a parse alone misses.
	conf := model.NewDefaultConfiguration()
	conf.OwnerPW = "owner-secret"

	var encrypted bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(testutil.TextPDF("restricted")), &encrypted, conf); err != nil {
		t.Fatalf("building encrypted document: %v", err)
	}

	_, err := ReadInfo(encrypted.Bytes())
	if err == nil {
		t.Fatal("expected error for encrypted document")
	}
	if !errors.Is(err, ErrEncrypted) {
		t.Errorf("expected ErrEncrypted, got %v", err)
	}
}

func TestReadInfo_RejectsNonPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"plain text", []byte("this is not a pdf")},
		{"header only", []byte("%PDF-1.4\nand then nothing useful")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadInfo(tt.data)
			if err == nil {
				t.Fatal("expected error for invalid input")
			}
			if !errors.Is(err, ErrNotPDF) {
				t.Errorf("expected ErrNotPDF, got %v", err)
			}
		})
	}
}
