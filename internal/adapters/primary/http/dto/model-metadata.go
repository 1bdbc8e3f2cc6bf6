package dto

import (
	"artifact-hub-service/internal/core/domain"
)

type CreateModelMetadataRequest struct {
	Name               string                       `json:"name" binding:"required,max=200"`
	Framework          string                       `json:"framework"`
	ModelType          string                       `json:"model_type"`
	Version            string                       `json:"version"`
	Image              string                       `json:"image"`
	Labels             []string                     `json:"labels"`
	LabelMap           map[string]string            `json:"label_map"`
	TaskTypes          []string                     `json:"task_types"`
	ModelInputs        []domain.ModelIO             `json:"model_inputs"`
	ModelOutputs       []domain.ModelIO             `json:"model_outputs"`
	InferenceHardware  *domain.HardwareRequirements `json:"inference_hardware"`
	TrainingHardware   *domain.HardwareRequirements `json:"training_hardware"`
	InferencePrecision string                       `json:"inference_precision"`
	Pretrained         bool                         `json:"pretrained"`
	License            string                       `json:"license"`
	Regulatory         []string                     `json:"regulatory"`
	InferenceServer    *domain.InferenceServer      `json:"inference_server"`
}

func (r CreateModelMetadataRequest) ToDomain() *domain.ModelMetadata {
	return &domain.ModelMetadata{
		Name:               r.Name,
		Framework:          r.Framework,
		ModelType:          r.ModelType,
		Version:            r.Version,
		Image:              r.Image,
		Labels:             r.Labels,
		LabelMap:           r.LabelMap,
		TaskTypes:          r.TaskTypes,
		ModelInputs:        r.ModelInputs,
		ModelOutputs:       r.ModelOutputs,
		InferenceHardware:  r.InferenceHardware,
		TrainingHardware:   r.TrainingHardware,
		InferencePrecision: r.InferencePrecision,
		Pretrained:         r.Pretrained,
		License:            r.License,
		Regulatory:         r.Regulatory,
		InferenceServer:    r.InferenceServer,
	}
}

type PlatformResponse struct {
	Name            string `json:"name"`
	IngestModel     bool   `json:"ingest_model"`
	IngestDataset   bool   `json:"ingest_dataset"`
	PublishModel    bool   `json:"publish_model"`
	PublishMetadata bool   `json:"publish_metadata"`
}
