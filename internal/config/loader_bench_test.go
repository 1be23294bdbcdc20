package config

import "testing"

func BenchmarkLoadDaemonConfig(b *testing.B) {
	dir := b.TempDir()
	path := writeTestConfig(b, dir, testConfigYAML)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		LoadDaemonConfig(path)
	}
}

func BenchmarkResolve(b *testing.B) {
	dir := b.TempDir()
	path := writeTestConfig(b, dir, testConfigYAML)
	cfg, err := LoadDaemonConfig(path)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Resolve(cfg)
	}
}
