package inventory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const worldTable = `WID      CID      WorldName                GID      GroupName
1001     1001     idle0                    1001     host/vim
2098065  2098065  vmx-vcpu-0:websrv01      2097960  host/user
2098123  2098123  vmx-vcpu-0:sqldb02       2097990  host/user
`

const adapterTable = `HBA Name  Driver      Link State  UID                                   Capabilities  Description
--------  ----------  ----------  ------------------------------------  ------------  -----------
vmhba0    vmw_ahci    link-n/a    sata.vmhba0                                         (0000:00:11.4) Intel Corporation Wellsburg AHCI Controller
vmhba64   qlnativefc  link-up     fc.20000024ff3dfed8:21000024ff3dfed8                (0000:82:00.0) QLogic Corp ISP2532-based 8Gb Fibre Channel HBA
`

const deviceBlocks = `naa.60003ff44dc75adc8e0c8e31a15f4aab
   Display Name: MSFT iSCSI Disk (naa.60003ff44dc75adc8e0c8e31a15f4aab)
   Has Settable Display Name: true
   Size: 1048576
mpx.vmhba0:C0:T0:L0
   Display Name: Local VMware Disk (mpx.vmhba0:C0:T0:L0)
   Size: 40960
`

const pathBlocks = `fc.20000024ff3dfed8:21000024ff3dfed8-fc.50060160c460260f:50060160c460260f-naa.60003ff44dc75adc8e0c8e31a15f4aab
   UID: fc.20000024ff3dfed8:21000024ff3dfed8-fc.50060160c460260f:50060160c460260f-naa.60003ff44dc75adc8e0c8e31a15f4aab
   Runtime Name: vmhba64:C0:T1:L0
   Device: naa.60003ff44dc75adc8e0c8e31a15f4aab
   Device Display Name: MSFT iSCSI Disk (naa.60003ff44dc75adc8e0c8e31a15f4aab)
   Adapter: vmhba64
   Target Identifier: fc.50060160c460260f:50060160c460260f
sata.vmhba0-sata.0:0-mpx.vmhba0:C0:T0:L0
   Runtime Name: vmhba0:C0:T0:L0
   Device: mpx.vmhba0:C0:T0:L0
   Adapter: vmhba0
`

const extentTable = `Volume Name   VMFS UUID                            Extent Number  Device Name                           Partition
-----------   -----------------------------------  -------------  ------------------------------------  ---------
datastore 01  5f8a9c2e-1b3d4e5f-6a7b-8c9d0e1f2a3b  0              naa.60003ff44dc75adc8e0c8e31a15f4aab  1
local-ds      6a1b2c3d-4e5f6a7b-8c9d-0e1f2a3b4c5d  0              mpx.vmhba0:C0:T0:L0                   3
`

// writeBundle lays out an extracted bundle tree under a temp dir.
func writeBundle(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		bundleWorldsFile:   worldTable,
		bundleAdaptersFile: adapterTable,
		bundleDevicesFile:  deviceBlocks,
		bundlePathsFile:    pathBlocks,
		bundleExtentsFile:  extentTable,
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestBundleLoad(t *testing.T) {
	root := writeBundle(t)

	s, err := Bundle{Root: root}.Load(context.Background())
	if err != nil {
		t.Fatalf("bundle load: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"world name", s.WorldName("2098065"), "vmx-vcpu-0:websrv01"},
		{"second world", s.WorldName("2098123"), "vmx-vcpu-0:sqldb02"},
		{"adapter description", s.AdapterName("vmhba64"), "(0000:82:00.0) QLogic Corp ISP2532-based 8Gb Fibre Channel HBA"},
		{"device display name", s.DeviceName("naa.60003ff44dc75adc8e0c8e31a15f4aab"), "MSFT iSCSI Disk (naa.60003ff44dc75adc8e0c8e31a15f4aab)"},
		{"local device", s.DeviceName("mpx.vmhba0:C0:T0:L0"), "Local VMware Disk (mpx.vmhba0:C0:T0:L0)"},
		{"path description", s.PathDescription("vmhba64:C0:T1:L0"), "vmhba64 -> naa.60003ff44dc75adc8e0c8e31a15f4aab"},
		{"datastore with spaces", s.DatastoreName("naa.60003ff44dc75adc8e0c8e31a15f4aab"), "datastore 01"},
		{"local datastore", s.DatastoreName("mpx.vmhba0:C0:T0:L0"), "local-ds"},
		{"miss is empty", s.WorldName("999999"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBundleLoadMissingFile(t *testing.T) {
	root := writeBundle(t)
	if err := os.Remove(filepath.Join(root, filepath.FromSlash(bundlePathsFile))); err != nil {
		t.Fatal(err)
	}

	if _, err := (Bundle{Root: root}).Load(context.Background()); err == nil {
		t.Fatal("expected error for missing bundle file")
	}
}

func TestBundleLoadBadHeader(t *testing.T) {
	root := writeBundle(t)
	path := filepath.Join(root, filepath.FromSlash(bundleWorldsFile))
	if err := os.WriteFile(path, []byte("not a world table\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := (Bundle{Root: root}).Load(context.Background()); err == nil {
		t.Fatal("expected error for unrecognized table header")
	}
}
