package config

import (
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JuanParadigma/factura-extractor/dto"
)

// vendors.yaml shape:
//
//	guerrini:
//	  detect:
//	    names: ["GUERRINI"]
//	    cuits: ["30-12345678-9"]
type vendorEntry struct {
	Detect struct {
		Names []string `yaml:"names"`
		CUITs []string `yaml:"cuits"`
	} `yaml:"detect"`
}

// LoadVendorConfig reads the vendor detection table. A missing or unreadable
// file yields an empty configuration, never an error: detection then relies
// on the caller hint alone.
func LoadVendorConfig(path string) *dto.VendorConfig {
	cfg := dto.EmptyVendorConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	entries := map[string]vendorEntry{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		log.Printf("invalid vendor config %s: %v", path, err)
		return cfg
	}

	for vid, entry := range entries {
		id := strings.ToUpper(vid)
		for _, name := range entry.Detect.Names {
			cfg.Names[id] = append(cfg.Names[id], name)
		}
		for _, cuit := range entry.Detect.CUITs {
			cfg.CUITs[cuit] = id
		}
	}
	return cfg
}
