package yalealarm_test

import (
	"context"
	"fmt"
	"log"
	"time"

	yale "github.com/domwillcode/yalealarm-go"
)

func ExampleNewClient() {
	client, err := yale.NewClient("user@example.com", "password")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	armed, err := client.IsArmed(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("armed: %v\n", armed)
}

func ExampleNewClient_withOptions() {
	store := yale.NewFileTokenStore("/var/lib/myapp/yale-tokens.json")

	client, err := yale.NewClient("user@example.com", "password",
		yale.WithTimeout(10*time.Second),
		yale.WithAreaID(1),
		yale.WithTokenStore(store),
		yale.WithTransientRetry(&yale.RetryConfig{
			MaxTries:       3,
			MaxElapsedTime: 15 * time.Second,
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	_ = client
}

func ExampleClient_SetArmedStatus() {
	client, _ := yale.NewClient("user@example.com", "password")
	ctx := context.Background()

	ok, err := client.SetArmedStatus(ctx, yale.ArmStatePartial)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("armed home: %v\n", ok)
}

func ExampleClient_GetLocksStatus() {
	client, _ := yale.NewClient("user@example.com", "password")
	ctx := context.Background()

	locks, err := client.GetLocksStatus(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for name, state := range locks {
		fmt.Printf("%s: %s\n", name, state)
	}
}

func ExampleDoorManAPI_Locks() {
	client, _ := yale.NewClient("user@example.com", "password")
	ctx := context.Background()

	for lock, err := range client.LockAPI().Locks(ctx) {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(lock) // frontdoor [locked]
	}
}

func ExampleDoorManAPI_Get() {
	client, _ := yale.NewClient("user@example.com", "password")
	ctx := context.Background()

	lock, err := client.LockAPI().Get(ctx, "frontdoor")
	if err != nil {
		log.Fatal(err)
	}

	if _, err := lock.Open(ctx, "123456"); err != nil {
		log.Fatal(err)
	}
	if _, err := lock.Close(ctx); err != nil {
		log.Fatal(err)
	}
}

func ExampleDevice_LockState() {
	device := yale.Device{
		Name:             "frontdoor",
		Type:             yale.DeviceTypeDoorLock,
		MinigwLockStatus: "11",
	}
	fmt.Println(device.LockState())
	// Output: locked
}
