package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ModelIO struct {
	DataType string `json:"data_type"`
	Shape    []int  `json:"shape,omitempty"`
}

type SystemRequirement struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type Accelerator struct {
	AcceleratorType    string              `json:"accelerator_type"`
	MemoryGB           int                 `json:"memory_gb,omitempty"`
	Cores              int                 `json:"cores,omitempty"`
	SystemRequirements []SystemRequirement `json:"system_requirements,omitempty"`
}

type HardwareRequirements struct {
	CPUs          int           `json:"cpus,omitempty"`
	MemoryGB      int           `json:"memory_gb,omitempty"`
	DiskGB        int           `json:"disk_gb,omitempty"`
	Accelerators  []Accelerator `json:"accelerators,omitempty"`
	Architectures []string      `json:"architectures,omitempty"`
}

// ModelMetadata describes a Model artifact. It can only be attached once the
// artifact is fully ingested.
type ModelMetadata struct {
	ArtifactID         uuid.UUID             `json:"artifact_id"`
	Name               string                `json:"name"`
	Framework          string                `json:"framework,omitempty"`
	ModelType          string                `json:"model_type,omitempty"`
	Version            string                `json:"version,omitempty"`
	Image              string                `json:"image,omitempty"`
	Labels             []string              `json:"labels,omitempty"`
	LabelMap           map[string]string     `json:"label_map,omitempty"`
	TaskTypes          []string              `json:"task_types,omitempty"`
	ModelInputs        []ModelIO             `json:"model_inputs,omitempty"`
	ModelOutputs       []ModelIO             `json:"model_outputs,omitempty"`
	InferenceHardware  *HardwareRequirements `json:"inference_hardware,omitempty"`
	TrainingHardware   *HardwareRequirements `json:"training_hardware,omitempty"`
	InferencePrecision string                `json:"inference_precision,omitempty"`
	Pretrained         bool                  `json:"pretrained,omitempty"`
	License            string                `json:"license,omitempty"`
	Regulatory         []string              `json:"regulatory,omitempty"`
	InferenceServer    *InferenceServer      `json:"inference_server,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
}

func (m *ModelMetadata) Validate() error {
	if m.Name == "" {
		return ErrInvalidMetadataName
	}
	return nil
}

// ============================================================================
// Inference Server
// ============================================================================

type InterfaceType string

const (
	InterfaceTypeContainer InterfaceType = "container"
	InterfaceTypeRestAPI   InterfaceType = "rest_api"
	InterfaceTypeModel     InterfaceType = "model"
)

type InferenceServer struct {
	Name        string            `json:"name"`
	Version     string            `json:"version,omitempty"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Interfaces  []ServerInterface `json:"interfaces,omitempty"`
}

type ContainerInterface struct {
	Image   string            `json:"image"`
	Port    int               `json:"port,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Command []string          `json:"command,omitempty"`
}

type RestAPIInterface struct {
	Name   string          `json:"name"`
	Format string          `json:"format"`
	Spec   json.RawMessage `json:"spec,omitempty"`
}

type ModelInterface struct {
	Name   string                     `json:"name"`
	Input  map[string]json.RawMessage `json:"input,omitempty"`
	Output map[string]json.RawMessage `json:"output,omitempty"`
}

// ServerInterface holds exactly one variant, selected by Type.
type ServerInterface struct {
	Type      InterfaceType
	Container *ContainerInterface
	RestAPI   *RestAPIInterface
	Model     *ModelInterface
}

func (s ServerInterface) MarshalJSON() ([]byte, error) {
	var body any
	switch s.Type {
	case InterfaceTypeContainer:
		body = s.Container
	case InterfaceTypeRestAPI:
		body = s.RestAPI
	case InterfaceTypeModel:
		body = s.Model
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidInterfaceType, s.Type)
	}
	return json.Marshal(struct {
		Type InterfaceType `json:"type"`
		Spec any           `json:"spec"`
	}{s.Type, body})
}

// UnmarshalJSON reads the "type" discriminant first and then decodes "spec"
// into the matching variant.
func (s *ServerInterface) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Type InterfaceType   `json:"type"`
		Spec json.RawMessage `json:"spec"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	*s = ServerInterface{Type: envelope.Type}
	switch envelope.Type {
	case InterfaceTypeContainer:
		s.Container = &ContainerInterface{}
		return decodeSpec(envelope.Spec, s.Container)
	case InterfaceTypeRestAPI:
		s.RestAPI = &RestAPIInterface{}
		return decodeSpec(envelope.Spec, s.RestAPI)
	case InterfaceTypeModel:
		s.Model = &ModelInterface{}
		return decodeSpec(envelope.Spec, s.Model)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidInterfaceType, envelope.Type)
	}
}

func decodeSpec(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, into)
}
