package grpcsvc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName — полное имя gRPC-сервиса.
const ServiceName = "fleetfeast.v1.Store"

// Имена методов сервиса.
const (
	MethodListPlates       = "ListPlates"
	MethodGetPlate         = "GetPlate"
	MethodSavePlate        = "SavePlate"
	MethodDeletePlate      = "DeletePlate"
	MethodListOrders       = "ListOrders"
	MethodSaveOrder        = "SaveOrder"
	MethodDeleteOrder      = "DeleteOrder"
	MethodListOrderDetails = "ListOrderDetails"
	MethodAddPlateToOrder  = "AddPlateToOrder"
	MethodChangeQuantity   = "ChangeQuantity"
	MethodNotifyCustomer   = "NotifyCustomer"
)

// StoreServer — серверная сторона fleetfeast.v1.Store.
// Запросы и ответы передаются как google.protobuf.Struct с полями в camelCase.
type StoreServer interface {
	ListPlates(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPlate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SavePlate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeletePlate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListOrders(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListOrderDetails(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddPlateToOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangeQuantity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	NotifyCustomer(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(StoreServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(StoreServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(server, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FullMethod возвращает путь метода вида /fleetfeast.v1.Store/Name.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// StoreServiceDesc описывает сервис для grpc.Server.RegisterService.
var StoreServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StoreServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodListPlates, StoreServer.ListPlates),
		unaryMethod(MethodGetPlate, StoreServer.GetPlate),
		unaryMethod(MethodSavePlate, StoreServer.SavePlate),
		unaryMethod(MethodDeletePlate, StoreServer.DeletePlate),
		unaryMethod(MethodListOrders, StoreServer.ListOrders),
		unaryMethod(MethodSaveOrder, StoreServer.SaveOrder),
		unaryMethod(MethodDeleteOrder, StoreServer.DeleteOrder),
		unaryMethod(MethodListOrderDetails, StoreServer.ListOrderDetails),
		unaryMethod(MethodAddPlateToOrder, StoreServer.AddPlateToOrder),
		unaryMethod(MethodChangeQuantity, StoreServer.ChangeQuantity),
		unaryMethod(MethodNotifyCustomer, StoreServer.NotifyCustomer),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fleetfeast/v1/store.proto",
}

// RegisterStoreServer регистрирует реализацию на сервере.
func RegisterStoreServer(s grpc.ServiceRegistrar, srv StoreServer) {
	s.RegisterService(&StoreServiceDesc, srv)
}

// StoreClient вызывает методы fleetfeast.v1.Store.
type StoreClient struct {
	cc grpc.ClientConnInterface
}

// NewStoreClient создаёт клиента поверх соединения.
func NewStoreClient(cc grpc.ClientConnInterface) *StoreClient {
	return &StoreClient{cc: cc}
}

// Call вызывает метод по имени; nil-запрос заменяется пустой структурой.
func (c *StoreClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
