package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestChartCSVWriterHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saida.csv")
	w, err := NewChartCSVWriter(path)
	if err != nil {
		t.Fatal(err)
	}

	header := []string{"Mês_Ano", "Valor"}
	if err := w.WriteHeader(header); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRows("NORTE", "Incremento de Água - Urbano", [][]string{{"janeiro de 2025", "100"}}); err != nil {
		t.Fatal(err)
	}
	// Every chart calls WriteHeader again; only the first wins.
	if err := w.WriteHeader(header); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRows("SUL", "Incremento de Água - Urbano", [][]string{{"janeiro de 2025", "50"}}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("file must start with a UTF-8 BOM")
	}

	lines := strings.Split(strings.TrimSpace(string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (one header, two rows): %q", len(lines), lines)
	}
	if lines[0] != "Superintendencia;Gráfico;Mês_Ano;Valor" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "NORTE;Incremento de Água - Urbano;janeiro de 2025;100" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if strings.Count(string(data), "Superintendencia") != 1 {
		t.Error("header written more than once")
	}
}

func TestChartCSVWriterCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "saida.csv")
	w, err := NewChartCSVWriter(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file at %s: %v", path, err)
	}
}
