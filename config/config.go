package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	TesseractDataPath string
	VendorConfigPath  string
	PreferOCR         bool
	MaxFileSize       int64
}

func LoadConfig() *Config {
	// Local development keeps overrides in a .env file; absence is fine.
	_ = godotenv.Load()

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	tesseractDataPath := os.Getenv("TESSDATA_PREFIX")
	if tesseractDataPath == "" {
		tesseractDataPath = "/usr/share/tesseract-ocr/5/tessdata/"
	}

	vendorConfigPath := os.Getenv("VENDORS_CONFIG")
	if vendorConfigPath == "" {
		vendorConfigPath = "vendors.yaml"
	}

	preferOCR := true
	if v, err := strconv.ParseBool(os.Getenv("PREFER_OCR")); err == nil {
		preferOCR = v
	}

	return &Config{
		ServerPort:        serverPort,
		TesseractDataPath: tesseractDataPath,
		VendorConfigPath:  vendorConfigPath,
		PreferOCR:         preferOCR,
		MaxFileSize:       10 * 1024 * 1024, // 10 MB
	}
}
