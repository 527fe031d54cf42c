package glowmarkt

import (
	"encoding/json"
	"time"
)

// The API returns listing payloads as flat JSON arrays. Entities are
// keyed by their primary identifier when exposed from the client so
// lookups by ID stay cheap.

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorBody struct {
	Message string `json:"message"`
}

// authResponse covers both the valid and invalid shapes of the auth
// and token-validation endpoints. The two variants are discriminated
// by the boolean valid field and the presence of an error object.
type authResponse struct {
	Valid bool       `json:"valid"`
	Token string     `json:"token"`
	Exp   int64      `json:"exp"`
	Error *errorBody `json:"error"`
}

func (r *authResponse) validate() error {
	if r.Error != nil {
		return newError(KindNotAuthenticated, "%s", r.Error.Message)
	}
	if !r.Valid {
		return newError(KindNotAuthenticated, "authentication error")
	}
	return nil
}

// ResourceInfo links a virtual entity to one of its resources.
type ResourceInfo struct {
	ResourceID     string `json:"resourceId"`
	ResourceTypeID string `json:"resourceTypeId"`
}

// VirtualEntity is a grouping of resources, normally a home.
type VirtualEntity struct {
	ID        string         `json:"veId"`
	Name      string         `json:"name"`
	Active    bool           `json:"active"`
	TypeID    string         `json:"veTypeId"`
	OwnerID   string         `json:"ownerId"`
	Resources []ResourceInfo `json:"resources"`
}

// Sensor describes one data feed advertised by a device type.
type Sensor struct {
	ProtocolID     string `json:"protocolId"`
	ResourceTypeID string `json:"resourceTypeId"`
}

// Protocol describes how a device type reports its sensors.
type Protocol struct {
	Protocol string   `json:"protocol"`
	Sensors  []Sensor `json:"sensors"`
}

// DeviceType describes a class of metering hardware.
type DeviceType struct {
	ID            string          `json:"deviceTypeId"`
	Description   string          `json:"description"`
	Active        bool            `json:"active"`
	Protocol      Protocol        `json:"protocol"`
	Configuration json.RawMessage `json:"configuration"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// DeviceSensor maps a sensor on a concrete device to its resource.
type DeviceSensor struct {
	ProtocolID     string `json:"protocolId"`
	ResourceID     string `json:"resourceId"`
	ResourceTypeID string `json:"resourceTypeId"`
}

// DeviceProtocol lists the sensors a concrete device exposes.
type DeviceProtocol struct {
	Protocol string         `json:"protocol"`
	Sensors  []DeviceSensor `json:"sensors"`
}

// Device is a physical or logical metering unit.
type Device struct {
	ID               string            `json:"deviceId"`
	Description      string            `json:"description"`
	Active           bool              `json:"active"`
	HardwareID       string            `json:"hardwareId"`
	DeviceTypeID     string            `json:"deviceTypeId"`
	OwnerID          string            `json:"ownerId"`
	HardwareIDNames  []string          `json:"hardwareIdNames"`
	HardwareIDs      map[string]string `json:"hardwareIds"`
	ParentHardwareID []string          `json:"parentHardwareId"`
	Tags             []string          `json:"tags"`
	Protocol         DeviceProtocol    `json:"protocol"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// DataSourceTypeInfo is delivered either as a bare string naming the
// data type or as a full object. The string form decodes into Type.
type DataSourceTypeInfo struct {
	Type   string `json:"type"`
	Unit   string `json:"unit"`
	Range  string `json:"range"`
	IsCost *bool  `json:"isCost"`
	Method string `json:"method"`
}

func (d *DataSourceTypeInfo) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d.Type = s
		return nil
	}

	type plain DataSourceTypeInfo
	return json.Unmarshal(data, (*plain)(d))
}

// StorageField describes one stored field of a resource type.
type StorageField struct {
	FieldName string `json:"fieldName"`
	Datatype  string `json:"datatype"`
	Negative  bool   `json:"negative"`
}

// Storage describes how readings for a resource type are stored.
type Storage struct {
	Type     string          `json:"type"`
	Sampling string          `json:"sampling"`
	Start    json.RawMessage `json:"start"`
	Fields   []StorageField  `json:"fields"`
}

// ResourceType describes a class of resource.
type ResourceType struct {
	ID                         string              `json:"resourceTypeId"`
	Name                       string              `json:"name"`
	Description                string              `json:"description"`
	Label                      string              `json:"label"`
	Active                     bool                `json:"active"`
	Classifier                 string              `json:"classifier"`
	BaseUnit                   string              `json:"baseUnit"`
	DataSourceType             string              `json:"dataSourceType"`
	DataSourceResourceTypeInfo *DataSourceTypeInfo `json:"dataSourceResourceTypeInfo"`
	Units                      map[string]string   `json:"units"`
	Storage                    []Storage           `json:"storage"`
}

// Resource is a meter-like data source whose readings can be fetched.
type Resource struct {
	ID                         string              `json:"resourceId"`
	Name                       string              `json:"name"`
	Description                string              `json:"description"`
	Label                      string              `json:"label"`
	Active                     bool                `json:"active"`
	TypeID                     string              `json:"resourceTypeId"`
	OwnerID                    string              `json:"ownerId"`
	Classifier                 string              `json:"classifier"`
	BaseUnit                   string              `json:"baseUnit"`
	DataSourceType             string              `json:"dataSourceType"`
	DataSourceResourceTypeInfo *DataSourceTypeInfo `json:"dataSourceResourceTypeInfo"`
	DataSourceUnitInfo         json.RawMessage     `json:"dataSourceUnitInfo"`
	UpdatedAt                  time.Time           `json:"updatedAt"`
	CreatedAt                  time.Time           `json:"createdAt"`
}

// TariffTime is a timestamp in the "2006-01-02 15:04:05" layout the
// tariff endpoints use instead of RFC 3339.
type TariffTime struct {
	time.Time
}

const tariffTimeLayout = "2006-01-02 15:04:05"

func (t *TariffTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(tariffTimeLayout, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t TariffTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(tariffTimeLayout))
}

// TariffPlan is one plan block within a tariff.
type TariffPlan struct {
	PlanDetail []map[string]interface{} `json:"planDetail"`
	WeekName   string                   `json:"weekName,omitempty"`
	Source     string                   `json:"source,omitempty"`
}

// TariffData is the tariff currently applied to a resource.
type TariffData struct {
	Plan      []TariffPlan `json:"plan"`
	CID       string       `json:"cid"`
	Commodity string       `json:"commodity"`
	From      TariffTime   `json:"from"`
	Name      string       `json:"name"`
}

// TariffListEntry is one historical tariff for a resource.
type TariffListEntry struct {
	ID            string       `json:"id"`
	Plan          []TariffPlan `json:"plan"`
	EffectiveDate *TariffTime  `json:"effectiveDate,omitempty"`
	From          *TariffTime  `json:"from,omitempty"`
	DisplayName   string       `json:"displayName,omitempty"`
	Name          string       `json:"name,omitempty"`
}

type latestTariffResponse struct {
	Data []TariffData `json:"data"`
}

type tariffListResponse struct {
	Data []TariffListEntry `json:"data"`
}

// readingEntry is one [epochSeconds, value] pair from the readings
// endpoint.
type readingEntry struct {
	Timestamp int64
	Value     float32
}

func (r *readingEntry) UnmarshalJSON(data []byte) error {
	var tuple [2]json.Number
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}

	ts, err := tuple[0].Int64()
	if err != nil {
		return err
	}
	value, err := tuple[1].Float64()
	if err != nil {
		return err
	}

	r.Timestamp = ts
	r.Value = float32(value)
	return nil
}

type readingsResponse struct {
	Data []readingEntry `json:"data"`
}
