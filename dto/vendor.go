package dto

// VendorConfig is the read-only vendor detection lookup table loaded from
// vendors.yaml. Names maps vendor id to candidate name fragments; CUITs maps
// a provider CUIT to its vendor id.
type VendorConfig struct {
	Names map[string][]string
	CUITs map[string]string
}

// EmptyVendorConfig returns a usable zero configuration, used when the
// config source is absent.
func EmptyVendorConfig() *VendorConfig {
	return &VendorConfig{
		Names: map[string][]string{},
		CUITs: map[string]string{},
	}
}
