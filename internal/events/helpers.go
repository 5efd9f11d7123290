// Helper methods for type-safe data access
package events

import (
	"encoding/json"
	"fmt"
)

func (e *ConversationEvent) setData(data interface{}) error {
	dataMap, err := structToMap(data)
	if err != nil {
		return fmt.Errorf("failed to convert %T: %w", data, err)
	}
	e.Data = dataMap
	return nil
}

// GetTurnProcessedData retrieves TurnProcessedData from the Data field.
func (e *ConversationEvent) GetTurnProcessedData() (*TurnProcessedData, error) {
	var data TurnProcessedData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse TurnProcessedData: %w", err)
	}
	return &data, nil
}

// GetCommitmentData retrieves CommitmentData from the Data field.
func (e *ConversationEvent) GetCommitmentData() (*CommitmentData, error) {
	var data CommitmentData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse CommitmentData: %w", err)
	}
	return &data, nil
}

// GetLoopEscapeData retrieves LoopEscapeData from the Data field.
func (e *ConversationEvent) GetLoopEscapeData() (*LoopEscapeData, error) {
	var data LoopEscapeData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse LoopEscapeData: %w", err)
	}
	return &data, nil
}

// GetPriorityRecordedData retrieves PriorityRecordedData from the Data field.
func (e *ConversationEvent) GetPriorityRecordedData() (*PriorityRecordedData, error) {
	var data PriorityRecordedData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse PriorityRecordedData: %w", err)
	}
	return &data, nil
}

// structToMap converts a struct to map[string]interface{} using JSON marshaling.
func structToMap(data interface{}) (map[string]interface{}, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// mapToStruct converts a map[string]interface{} to a struct using JSON unmarshaling.
func mapToStruct(dataMap map[string]interface{}, target interface{}) error {
	bytes, err := json.Marshal(dataMap)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, target)
}
