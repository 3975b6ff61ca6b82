package steps

import "github.com/kode4food/courier/pkg/api"

const (
	Idle          GenericStep = GenericStep(api.IdleStep)
	SelectService GenericStep = "select-service"
)

const (
	CustomerTransportDefineTrip         CustomerTransport = "define-trip"
	CustomerTransportConfirmOrigin      CustomerTransport = "confirm-origin"
	CustomerTransportConfirmDestination CustomerTransport = "confirm-destination"
	CustomerTransportSelectVehicle      CustomerTransport = "select-vehicle"
	CustomerTransportPaymentMethod      CustomerTransport = "payment-method"
	CustomerTransportMatching           CustomerTransport = "matching"
	CustomerTransportAwaitAcceptance    CustomerTransport = "await-acceptance"
	CustomerTransportEnRoute            CustomerTransport = "en-route"
	CustomerTransportArrived            CustomerTransport = "arrived"
	CustomerTransportInProgress         CustomerTransport = "in-progress"
	CustomerTransportCompleted          CustomerTransport = "completed"
	CustomerTransportCancelled          CustomerTransport = "cancelled"
)

const (
	CustomerDeliveryDetails         CustomerDelivery = "delivery-details"
	CustomerDeliveryConfirmPickup   CustomerDelivery = "confirm-pickup"
	CustomerDeliveryConfirmDropoff  CustomerDelivery = "confirm-dropoff"
	CustomerDeliveryPackageDetails  CustomerDelivery = "package-details"
	CustomerDeliveryPaymentMethod   CustomerDelivery = "payment-method"
	CustomerDeliveryMatching        CustomerDelivery = "matching"
	CustomerDeliveryAwaitAcceptance CustomerDelivery = "await-acceptance"
	CustomerDeliveryCourierEnRoute  CustomerDelivery = "courier-en-route"
	CustomerDeliveryCourierArrived  CustomerDelivery = "courier-arrived"
	CustomerDeliveryInTransit       CustomerDelivery = "in-transit"
	CustomerDeliveryDelivered       CustomerDelivery = "delivered"
	CustomerDeliveryCancelled       CustomerDelivery = "cancelled"
)

const (
	CustomerErrandDetails            CustomerErrand = "errand-details"
	CustomerErrandConfirmOrigin      CustomerErrand = "confirm-origin"
	CustomerErrandConfirmDestination CustomerErrand = "confirm-destination"
	CustomerErrandBudget             CustomerErrand = "errand-budget"
	CustomerErrandPaymentMethod      CustomerErrand = "payment-method"
	CustomerErrandMatching           CustomerErrand = "matching"
	CustomerErrandAwaitAcceptance    CustomerErrand = "await-acceptance"
	CustomerErrandEnRoute            CustomerErrand = "en-route"
	CustomerErrandArrived            CustomerErrand = "arrived"
	CustomerErrandInProgress         CustomerErrand = "in-progress"
	CustomerErrandCompleted          CustomerErrand = "completed"
	CustomerErrandCancelled          CustomerErrand = "cancelled"
)

const (
	CustomerParcelDetails          CustomerParcel = "parcel-details"
	CustomerParcelConfirmPickup    CustomerParcel = "confirm-pickup"
	CustomerParcelConfirmDropoff   CustomerParcel = "confirm-dropoff"
	CustomerParcelRecipientDetails CustomerParcel = "recipient-details"
	CustomerParcelSize             CustomerParcel = "parcel-size"
	CustomerParcelPaymentMethod    CustomerParcel = "payment-method"
	CustomerParcelMatching         CustomerParcel = "matching"
	CustomerParcelAwaitAcceptance  CustomerParcel = "await-acceptance"
	CustomerParcelCourierEnRoute   CustomerParcel = "courier-en-route"
	CustomerParcelCourierArrived   CustomerParcel = "courier-arrived"
	CustomerParcelInTransit        CustomerParcel = "in-transit"
	CustomerParcelDelivered        CustomerParcel = "delivered"
	CustomerParcelCancelled        CustomerParcel = "cancelled"
)

const (
	DriverTransportGoOnline         DriverTransport = "go-online"
	DriverTransportAwaitRequest     DriverTransport = "await-request"
	DriverTransportIncomingRequest  DriverTransport = "incoming-request"
	DriverTransportNavigateToPickup DriverTransport = "navigate-to-pickup"
	DriverTransportAtPickup         DriverTransport = "at-pickup"
	DriverTransportInProgress       DriverTransport = "in-progress"
	DriverTransportCompleted        DriverTransport = "completed"
	DriverTransportCancelled        DriverTransport = "cancelled"
)

const (
	DriverDeliveryGoOnline         DriverDelivery = "go-online"
	DriverDeliveryAwaitRequest     DriverDelivery = "await-request"
	DriverDeliveryIncomingRequest  DriverDelivery = "incoming-request"
	DriverDeliveryNavigateToPickup DriverDelivery = "navigate-to-pickup"
	DriverDeliveryAtPickup         DriverDelivery = "at-pickup"
	DriverDeliveryDelivering       DriverDelivery = "delivering"
	DriverDeliveryDelivered        DriverDelivery = "delivered"
	DriverDeliveryCancelled        DriverDelivery = "cancelled"
)

const (
	DriverErrandGoOnline        DriverErrand = "go-online"
	DriverErrandAwaitRequest    DriverErrand = "await-request"
	DriverErrandIncomingRequest DriverErrand = "incoming-request"
	DriverErrandNavigateToStore DriverErrand = "navigate-to-store"
	DriverErrandAtStore         DriverErrand = "at-store"
	DriverErrandRunning         DriverErrand = "running-errand"
	DriverErrandCompleted       DriverErrand = "completed"
	DriverErrandCancelled       DriverErrand = "cancelled"
)

const (
	DriverParcelGoOnline         DriverParcel = "go-online"
	DriverParcelAwaitRequest     DriverParcel = "await-request"
	DriverParcelIncomingRequest  DriverParcel = "incoming-request"
	DriverParcelNavigateToPickup DriverParcel = "navigate-to-pickup"
	DriverParcelAtPickup         DriverParcel = "at-pickup"
	DriverParcelDelivering       DriverParcel = "delivering"
	DriverParcelDelivered        DriverParcel = "delivered"
	DriverParcelCancelled        DriverParcel = "cancelled"
)
