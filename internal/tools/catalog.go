package tools

import (
	"net/http"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/registry"
)

// Detection statuses accepted by update_detection_status.
var DetectionStatuses = []string{"new", "in_progress", "true_positive", "false_positive", "ignored"}

// IOC enumerations accepted by create_ioc.
var (
	IOCTypes     = []string{"domain", "ipv4", "ipv6", "md5", "sha256"}
	IOCActions   = []string{"detect", "prevent", "allow"}
	IOCPlatforms = []string{"Windows", "Mac", "Linux"}
)

// Catalog returns the Falcon tool descriptors in their canonical order.
// Every call returns fresh values.
func Catalog() []registry.ToolDescriptor {
	return []registry.ToolDescriptor{
		{
			Name:        "query_hosts",
			Description: "Query hosts (devices) with an FQL filter and return matching device ids.",
			Parameters:  queryParameters("hostname.asc"),
			Handler:     queryOperation("/devices/queries/devices/v1"),
		},
		{
			Name:        "get_host_details",
			Description: "Get detailed information about specific hosts.",
			Parameters:  []registry.Parameter{idsParameter("device_ids", "Device ids to look up")},
			Handler:     idsQueryOperation(http.MethodGet, "/devices/entities/devices/v2", "device_ids"),
		},
		{
			Name:        "query_detections",
			Description: "Query detections with an FQL filter and return matching detection ids.",
			Parameters:  queryParameters("first_behavior.desc"),
			Handler:     queryOperation("/detects/queries/detects/v1"),
		},
		{
			Name:        "get_detection_details",
			Description: "Get detailed information about specific detections.",
			Parameters:  []registry.Parameter{idsParameter("detection_ids", "Detection ids to look up")},
			Handler:     idsBodyOperation("/detects/entities/summaries/GET/v1", "detection_ids"),
		},
		{
			Name:        "update_detection_status",
			Description: "Update the status, assignee or comment of detections.",
			Parameters: []registry.Parameter{
				idsParameter("detection_ids", "Detection ids to update"),
				{
					Name:        "status",
					Type:        registry.TypeString,
					Description: "New detection status",
					Required:    true,
					Enum:        DetectionStatuses,
				},
				{Name: "assigned_to_uuid", Type: registry.TypeString, Description: "User UUID to assign the detections to"},
				{Name: "comment", Type: registry.TypeString, Description: "Comment to add"},
			},
			Handler: api.Operation{
				Method: http.MethodPost,
				Path:   "/detects/entities/detects/v2",
				Build:  buildUpdateDetections,
			},
		},
		{
			Name:        "query_iocs",
			Description: "Query custom indicators of compromise with an FQL filter.",
			Parameters:  queryParameters("created_on.desc"),
			Handler:     queryOperation("/iocs/queries/indicators/v1"),
		},
		{
			Name:        "create_ioc",
			Description: "Create a custom indicator of compromise.",
			Parameters: []registry.Parameter{
				{Name: "type", Type: registry.TypeString, Description: "Indicator type", Required: true, Enum: IOCTypes},
				{Name: "value", Type: registry.TypeString, Description: "Indicator value", Required: true},
				{Name: "action", Type: registry.TypeString, Description: "Action taken on a match", Required: true, Enum: IOCActions},
				{
					Name:        "platforms",
					Type:        registry.TypeArray,
					Description: "Platforms the indicator applies to",
					Required:    true,
					ItemType:    registry.TypeString,
					ItemEnum:    IOCPlatforms,
					MinItems:    1,
				},
				{Name: "severity", Type: registry.TypeString, Description: "Severity level"},
				{Name: "description", Type: registry.TypeString, Description: "Free-form description"},
				{Name: "expiration", Type: registry.TypeString, Description: "Expiration timestamp (ISO 8601)"},
				{Name: "applied_globally", Type: registry.TypeBoolean, Description: "Apply to all hosts", Default: false},
				{
					Name:        "host_groups",
					Type:        registry.TypeArray,
					Description: "Host group ids the indicator applies to",
					ItemType:    registry.TypeString,
				},
			},
			Handler: api.Operation{
				Method: http.MethodPost,
				Path:   "/iocs/entities/indicators/v1",
				Build:  buildCreateIOC,
			},
		},
		{
			Name:        "delete_ioc",
			Description: "Delete custom indicators of compromise.",
			Parameters:  []registry.Parameter{idsParameter("ioc_ids", "Indicator ids to delete")},
			Handler:     idsQueryOperation(http.MethodDelete, "/iocs/entities/indicators/v1", "ioc_ids"),
		},
		{
			Name:        "query_host_groups",
			Description: "Query host groups with an FQL filter.",
			Parameters:  queryParameters("name.asc"),
			Handler:     queryOperation("/devices/queries/host-groups/v1"),
		},
		{
			Name:        "get_host_group_details",
			Description: "Get detailed information about specific host groups.",
			Parameters:  []registry.Parameter{idsParameter("group_ids", "Host group ids to look up")},
			Handler:     idsQueryOperation(http.MethodGet, "/devices/entities/host-groups/v1", "group_ids"),
		},
		{
			Name:        "query_prevention_policies",
			Description: "Query prevention policies with an FQL filter.",
			Parameters:  queryParameters("precedence.asc"),
			Handler:     queryOperation("/policy/queries/prevention/v1"),
		},
		{
			Name:        "get_prevention_policy_details",
			Description: "Get detailed information about specific prevention policies.",
			Parameters:  []registry.Parameter{idsParameter("policy_ids", "Prevention policy ids to look up")},
			Handler:     idsQueryOperation(http.MethodGet, "/policy/entities/prevention/v1", "policy_ids"),
		},
		{
			Name:        "query_sensor_update_policies",
			Description: "Query sensor update policies with an FQL filter.",
			Parameters:  queryParameters("precedence.asc"),
			Handler:     queryOperation("/policy/queries/sensor-update/v1"),
		},
		{
			Name:        "get_sensor_update_policy_details",
			Description: "Get detailed information about specific sensor update policies.",
			Parameters:  []registry.Parameter{idsParameter("policy_ids", "Sensor update policy ids to look up")},
			Handler:     idsQueryOperation(http.MethodGet, "/policy/entities/sensor-update/v2", "policy_ids"),
		},
	}
}

// Register adds the whole catalog to reg.
func Register(reg *registry.Registry) error {
	for _, desc := range Catalog() {
		if err := reg.Register(desc); err != nil {
			return err
		}
	}
	return nil
}

func buildUpdateDetections(params map[string]interface{}) (api.Request, error) {
	body := map[string]interface{}{
		"ids":    stringsParam(params, "detection_ids"),
		"status": stringParam(params, "status"),
	}
	if s := stringParam(params, "assigned_to_uuid"); s != "" {
		body["assigned_to_uuid"] = s
	}
	if s := stringParam(params, "comment"); s != "" {
		body["comment"] = s
	}
	return api.Request{Body: body}, nil
}

func buildCreateIOC(params map[string]interface{}) (api.Request, error) {
	body := map[string]interface{}{
		"type":      stringParam(params, "type"),
		"value":     stringParam(params, "value"),
		"action":    stringParam(params, "action"),
		"platforms": stringsParam(params, "platforms"),
	}
	if body["value"] == "" {
		return api.Request{}, api.NewValidationError([]api.FieldError{{Field: "value", Message: "must not be blank"}})
	}
	for _, name := range []string{"severity", "description", "expiration"} {
		if s := stringParam(params, name); s != "" {
			body[name] = s
		}
	}
	if b, ok := boolParam(params, "applied_globally"); ok {
		body["applied_globally"] = b
	}
	if groups := stringsParam(params, "host_groups"); len(groups) > 0 {
		body["host_groups"] = groups
	}
	return api.Request{Body: body}, nil
}
