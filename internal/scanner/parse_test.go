package scanner

import "testing"

func TestParseNumstat(t *testing.T) {
	out := "10\t5\tfile1.go\n20\t0\tfile2.go\n0\t3\tfile3.go"
	files := parseNumstat(out)

	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}
	if files[0].Path != "file1.go" || files[0].Additions != 10 || files[0].Deletions != 5 {
		t.Errorf("unexpected first file: %+v", files[0])
	}
}

func TestParseNumstatEmpty(t *testing.T) {
	if files := parseNumstat(""); len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}
}

func TestParseNumstatSpacesInPath(t *testing.T) {
	files := parseNumstat("5\t2\tpath with spaces.go")
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if files[0].Path != "path with spaces.go" {
		t.Errorf("path = %q", files[0].Path)
	}
	if files[0].Additions != 5 || files[0].Deletions != 2 {
		t.Errorf("counts = +%d/-%d", files[0].Additions, files[0].Deletions)
	}
}

func TestParseNumstatBinaryFiles(t *testing.T) {
	// Binary files report "-" for both counts.
	files := parseNumstat("-\t-\tassets/logo.png")
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if files[0].Additions != 0 || files[0].Deletions != 0 {
		t.Errorf("binary counts should parse as 0, got +%d/-%d", files[0].Additions, files[0].Deletions)
	}
}

func TestParseNumstatMalformedLinesDropped(t *testing.T) {
	out := "10\t5\tok.go\nnot-a-stat-line\n7\n\n3\t1\talso-ok.go"
	files := parseNumstat(out)
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(files), files)
	}
}

func TestFormatChanges(t *testing.T) {
	files := []FileChange{
		{Path: "file1.go", Additions: 10, Deletions: 5},
		{Path: "file2.go", Additions: 20},
		{Path: "file3.go", Deletions: 3},
		{Path: "file4.go"},
	}
	got := FormatChanges(files)

	want := "[+10/-5] file1.go\n[+20] file2.go\n[-3] file3.go\nfile4.go"
	if got != want {
		t.Errorf("FormatChanges =\n%s\nwant\n%s", got, want)
	}
}
