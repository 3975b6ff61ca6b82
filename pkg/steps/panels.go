package steps

import "github.com/kode4food/courier/pkg/api"

var (
	hiddenPanel = api.PanelConfig{}

	formPanel = api.PanelConfig{
		Visible:       true,
		MinExtent:     0.4,
		MaxExtent:     0.9,
		InitialExtent: 0.6,
		Draggable:     true,
	}

	mapPickPanel = api.PanelConfig{
		Visible:       true,
		MinExtent:     0.2,
		MaxExtent:     0.4,
		InitialExtent: 0.25,
	}

	waitingPanel = api.PanelConfig{
		Visible:       true,
		MinExtent:     0.3,
		MaxExtent:     0.3,
		InitialExtent: 0.3,
	}

	trackingPanel = api.PanelConfig{
		Visible:       true,
		MinExtent:     0.15,
		MaxExtent:     0.6,
		InitialExtent: 0.3,
		Draggable:     true,
	}

	terminalPanel = api.PanelConfig{
		Visible:       true,
		MinExtent:     0.5,
		MaxExtent:     0.5,
		InitialExtent: 0.5,
	}
)

var panelsByToken = map[api.StepID]api.PanelConfig{
	"select-service":      formPanel,
	"define-trip":         formPanel,
	"delivery-details":    formPanel,
	"errand-details":      formPanel,
	"parcel-details":      formPanel,
	"confirm-origin":      mapPickPanel,
	"confirm-destination": mapPickPanel,
	"confirm-pickup":      mapPickPanel,
	"confirm-dropoff":     mapPickPanel,
	"select-vehicle":      formPanel,
	"package-details":     formPanel,
	"errand-budget":       formPanel,
	"recipient-details":   formPanel,
	"parcel-size":         formPanel,
	"payment-method":      formPanel,
	"matching":            waitingPanel,
	"await-acceptance":    waitingPanel,
	"go-online":           formPanel,
	"await-request":       waitingPanel,
	"incoming-request":    formPanel,
	"completed":           terminalPanel,
	"delivered":           terminalPanel,
	"cancelled":           terminalPanel,
}

// Panel returns the bottom panel hints a step opens with. Steps without a
// specific preset are tracking steps; the idle step has no panel
func Panel(ns Namespace, id api.StepID) api.PanelConfig {
	if id == Idle.ID() || !Contains(ns, id) {
		return hiddenPanel
	}
	if p, ok := panelsByToken[id]; ok {
		return p
	}
	return trackingPanel
}
