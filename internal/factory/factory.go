package factory

import (
	"fmt"

	"go-screen-perception/internal/detector"
	"go-screen-perception/internal/storage"
)

// ExtractorType represents different text extraction backends
type ExtractorType string

const (
	// TesseractExtractor uses the native Tesseract engine
	TesseractExtractor ExtractorType = "tesseract"
)

// StorageType represents different screenshot sources
type StorageType string

const (
	// HTTPStorage for HTTP-based screenshot fetching
	HTTPStorage StorageType = "http"
	// LocalStorage for local file system
	LocalStorage StorageType = "local"
)

// DetectorFactory creates detection components
type DetectorFactory interface {
	CreateTextExtractor(extractorType ExtractorType, language string) (detector.TextExtractor, error)
	CreateShapeDetector() detector.ShapeDetector
}

// StorageFactory creates screenshot fetchers
type StorageFactory interface {
	CreateFetcher(storageType StorageType, maxBytes int64) (storage.ScreenshotFetcher, error)
}

type detectorFactory struct{}

// NewDetectorFactory creates a new detector factory
func NewDetectorFactory() DetectorFactory {
	return &detectorFactory{}
}

// CreateTextExtractor creates a text extractor of the specified type
func (f *detectorFactory) CreateTextExtractor(extractorType ExtractorType, language string) (detector.TextExtractor, error) {
	switch extractorType {
	case TesseractExtractor:
		return detector.NewTesseractExtractor(language), nil
	default:
		return nil, fmt.Errorf("unsupported extractor type: %s", extractorType)
	}
}

// CreateShapeDetector creates the edge-based shape detector
func (f *detectorFactory) CreateShapeDetector() detector.ShapeDetector {
	return detector.NewEdgeShapeDetector()
}

type storageFactory struct{}

// NewStorageFactory creates a new storage factory
func NewStorageFactory() StorageFactory {
	return &storageFactory{}
}

// CreateFetcher creates a screenshot fetcher of the specified type
func (f *storageFactory) CreateFetcher(storageType StorageType, maxBytes int64) (storage.ScreenshotFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPScreenshotFetcher(maxBytes), nil
	case LocalStorage:
		// TODO: Implement local storage when needed
		return nil, fmt.Errorf("local storage not yet implemented")
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	DetectorFactory DetectorFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory() *ComponentFactory {
	return &ComponentFactory{
		DetectorFactory: NewDetectorFactory(),
		StorageFactory:  NewStorageFactory(),
	}
}
