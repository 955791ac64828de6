package certs

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.Len(t, cert.Certificate, 1)
	x509Cert, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return x509Cert
}

func TestFileManager_GetOrCreateCertificate(t *testing.T) {
	tests := []struct {
		setup    func(t *testing.T, m *FileManager)
		validate func(t *testing.T, m *FileManager, cert tls.Certificate)
		name     string
	}{
		{
			name:  "creates certificate when none exists",
			setup: func(*testing.T, *FileManager) {},
			validate: func(t *testing.T, m *FileManager, cert tls.Certificate) {
				t.Helper()
				c := parse(t, cert)
				assert.Equal(t, "passbook", c.Subject.Organization[0])
				assert.Contains(t, c.DNSNames, "localhost")
				assert.Len(t, c.IPAddresses, 2)
				assert.NoError(t, c.VerifyHostname("127.0.0.1"))
				assert.True(t, c.NotAfter.After(time.Now().Add(364*24*time.Hour)))

				certFile, keyFile := m.Files()
				info, err := os.Stat(keyFile)
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
				assert.FileExists(t, certFile)
			},
		},
		{
			name: "reuses valid certificate",
			setup: func(t *testing.T, m *FileManager) {
				t.Helper()
				_, err := m.GetOrCreateCertificate()
				require.NoError(t, err)
			},
			validate: func(t *testing.T, m *FileManager, cert tls.Certificate) {
				t.Helper()
				again, err := m.GetOrCreateCertificate()
				require.NoError(t, err)
				assert.Equal(t, parse(t, cert).SerialNumber, parse(t, again).SerialNumber)
			},
		},
		{
			name: "replaces corrupt files",
			setup: func(t *testing.T, m *FileManager) {
				t.Helper()
				require.NoError(t, os.MkdirAll(m.certDir, 0o700))
				certFile, keyFile := m.Files()
				require.NoError(t, os.WriteFile(certFile, []byte("garbage"), 0o600))
				require.NoError(t, os.WriteFile(keyFile, []byte("garbage"), 0o600))
			},
			validate: func(t *testing.T, _ *FileManager, cert tls.Certificate) {
				t.Helper()
				assert.Contains(t, parse(t, cert).DNSNames, "localhost")
			},
		},
		{
			name: "replaces certificate close to expiry",
			setup: func(t *testing.T, m *FileManager) {
				t.Helper()
				m.validity = time.Hour
				_, err := m.GetOrCreateCertificate()
				require.NoError(t, err)
				m.validity = DefaultValidity
			},
			validate: func(t *testing.T, _ *FileManager, cert tls.Certificate) {
				t.Helper()
				assert.True(t, parse(t, cert).NotAfter.After(time.Now().Add(48*time.Hour)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFileManager(filepath.Join(t.TempDir(), "certs"))
			tt.setup(t, m)

			cert, err := m.GetOrCreateCertificate()
			require.NoError(t, err)
			tt.validate(t, m, cert)
		})
	}
}

func TestFileManager_CustomHosts(t *testing.T) {
	dir := t.TempDir()
	m := NewFileManager(dir, "passbook.local", "10.0.0.5")

	cert, err := m.GetOrCreateCertificate()
	require.NoError(t, err)
	c := parse(t, cert)
	assert.Equal(t, []string{"passbook.local"}, c.DNSNames)
	assert.NoError(t, c.VerifyHostname("10.0.0.5"))

	// A manager for different hosts does not accept the stored certificate.
	other := NewFileManager(dir, "localhost")
	replaced, err := other.GetOrCreateCertificate()
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost"}, parse(t, replaced).DNSNames)
}

func TestFileManager_CertificateExists(t *testing.T) {
	m := NewFileManager(t.TempDir())

	exists, err := m.CertificateExists()
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = m.GetOrCreateCertificate()
	require.NoError(t, err)

	exists, err = m.CertificateExists()
	require.NoError(t, err)
	assert.True(t, exists)

	_, keyFile := m.Files()
	require.NoError(t, os.Remove(keyFile))
	exists, err = m.CertificateExists()
	require.NoError(t, err)
	assert.False(t, exists)
}
